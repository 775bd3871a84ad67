package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"kanbanApi/internal/shared/session"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingKey   = errors.New("token secret not configured")
)

const nonceSize = 24

// Claims is the identity projection carried inside a login token.
type Claims struct {
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	ImgURL   string `json:"imgUrl,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Identity converts the claims back into the request identity.
func (c *Claims) Identity() *session.Identity {
	return &session.Identity{
		ID:       c.Subject,
		Email:    c.Email,
		Fullname: c.Fullname,
		ImgURL:   c.ImgURL,
		IsAdmin:  c.IsAdmin,
	}
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

type TokenIssuer interface {
	Issue(id session.Identity) (string, *Claims, error)
}

// TokenCodec issues and validates login tokens: HS256 claims sealed with
// NaCl secretbox, so the cookie value is both authenticated and opaque to
// the client. Signing and sealing keys are derived from one secret via HKDF.
type TokenCodec struct {
	signKey []byte
	sealKey [32]byte
	ttl     time.Duration
	now     func() time.Time
}

func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingKey
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	c := &TokenCodec{ttl: ttl, now: time.Now}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("kanban login token"))
	c.signKey = make([]byte, 32)
	if _, err := io.ReadFull(kdf, c.signKey); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	if _, err := io.ReadFull(kdf, c.sealKey[:]); err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}
	return c, nil
}

// TTL reports how long issued tokens stay valid.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

func (c *TokenCodec) Issue(id session.Identity) (string, *Claims, error) {
	if strings.TrimSpace(id.ID) == "" {
		return "", nil, fmt.Errorf("%w: identity without id", ErrInvalidToken)
	}
	now := c.now()
	claims := &Claims{
		Email:    id.Email,
		Fullname: id.Fullname,
		ImgURL:   id.ImgURL,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", nil, fmt.Errorf("token nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(signed), &nonce, &c.sealKey)
	return base64.RawURLEncoding.EncodeToString(sealed), claims, nil
}

func (c *TokenCodec) Validate(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: token too short", ErrInvalidToken)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	opened, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &c.sealKey)
	if !ok {
		return nil, fmt.Errorf("%w: decrypt failed", ErrInvalidToken)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(string(opened), claims, func(t *jwt.Token) (interface{}, error) {
		return c.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

var (
	_ TokenValidator = (*TokenCodec)(nil)
	_ TokenIssuer    = (*TokenCodec)(nil)
)
