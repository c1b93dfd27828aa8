// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil provides small helpers for reading data out of HTTP requests.
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangaden/internal/platform/apperr"
	"github.com/taibuivan/mangaden/internal/platform/ctxutil"
	"github.com/taibuivan/mangaden/internal/platform/sec"
	"github.com/taibuivan/mangaden/internal/platform/validate"
)

/*
DecodeJSON reads and decodes the request body into the destination struct.

Unknown fields are rejected so clients get immediate feedback on typos
instead of silently dropped payload keys.
*/
func DecodeJSON(request *http.Request, destination interface{}) error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(destination); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param returns a URL path parameter by name.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// ID returns the "id" URL path parameter.
func ID(request *http.Request) string {
	return chi.URLParam(request, "id")
}

// Claims returns the authenticated user's claims from the request context,
// or nil if the request is anonymous.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims returns the authenticated user's claims or an Unauthorized error.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the authenticated user's ID or an Unauthorized error.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
