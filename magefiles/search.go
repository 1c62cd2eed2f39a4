//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs one aggregated search, printing the table.
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "search", "--query", query)
}

// Serve builds the CLI and starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "serve")
}

func binPath() string {
	return "./" + binDir + "/" + binName
}
