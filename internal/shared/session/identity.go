// Package session carries the authenticated identity of one inbound call.
//
// The identity is attached to the request context once, by the auth
// middleware, and read downstream through FromContext. Every request gets its
// own context value, so concurrent calls never observe each other's identity.
package session

import (
	"context"
	"strings"
)

// Identity is the minimal projection of a user carried inside the login token.
type Identity struct {
	ID       string `json:"_id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	ImgURL   string `json:"imgUrl,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id. A nil or anonymous identity is not stored.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	if id == nil || strings.TrimSpace(id.ID) == "" {
		return ctx
	}
	copied := *id
	return context.WithValue(ctx, identityKey{}, &copied)
}

// FromContext returns the identity bound to ctx and whether one was present.
func FromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(identityKey{}).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	copied := *id
	return &copied, true
}

// UserID returns the id of the identity bound to ctx, or "" for anonymous calls.
func UserID(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok {
		return id.ID
	}
	return ""
}
