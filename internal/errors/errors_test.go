// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeUpstreamTimeout, http.StatusGatewayTimeout},
		{CodeBadUpstreamResponse, http.StatusBadGateway},
		{CodeUpstreamUnavailable, http.StatusBadGateway},
		{CodeSynthesisFailure, http.StatusBadGateway},
		{CodeNoResults, http.StatusOK},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := BadUpstreamResponse("crossref", "HTTP 503", nil)

	assert.True(t, Is(err, ErrBadUpstreamResponse))
	assert.False(t, Is(err, ErrUpstreamTimeout))

	wrapped := fmt.Errorf("searching: %w", err)
	assert.True(t, Is(wrapped, ErrBadUpstreamResponse))
}

func TestUnwrapReachesCause(t *testing.T) {
	err := UpstreamTimeout("arxiv", context.DeadlineExceeded)

	assert.True(t, Is(err, context.DeadlineExceeded))
	assert.True(t, Is(err, ErrUpstreamTimeout))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", InvalidInput("query is required"), "query is required"},
		{"with source", BadUpstreamResponse("pubmed", "HTTP 500", nil), "pubmed: HTTP 500"},
		{"with cause", UpstreamUnavailable("semantic_scholar", New("connection refused")), "semantic_scholar: request failed: connection refused"},
		{"code fallback", &Error{Code: CodeInternal}, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("lookup: %w", NotFound("no hit"))))
	assert.Equal(t, CodeInternal, CodeOf(New("plain")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusOf(InvalidInput("bad")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusOf(New("plain")))
}
