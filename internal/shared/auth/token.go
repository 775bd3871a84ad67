package auth

import (
	"net/http"
	"strings"
)

// LoginCookie is the cookie carrying the sealed login token.
const LoginCookie = "loginToken"

// ExtractBearerToken extracts the token from the Authorization header.
// It handles the "Bearer " prefix and returns an empty string if no token is present.
func ExtractBearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ExtractBearerTokenFromHeader(r.Header.Get("Authorization"))
}

// ExtractBearerTokenFromHeader extracts the token from an Authorization header value.
//
// Example:
//
//	token := ExtractBearerTokenFromHeader("Bearer q3Jd0...")
func ExtractBearerTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	const bearerPrefix = "bearer "
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return ""
}

// ExtractTokenFromCookie returns the login cookie value, or "" when absent.
func ExtractTokenFromCookie(r *http.Request) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(LoginCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// ExtractToken attempts to extract a token from multiple sources in order:
// 1. loginToken cookie
// 2. Authorization header (Bearer token)
//
// Returns the first non-empty token found.
func ExtractToken(r *http.Request) string {
	if token := ExtractTokenFromCookie(r); token != "" {
		return token
	}
	return ExtractBearerToken(r)
}
