package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	userdomain "kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/platform/revocation"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/auth"
	"kanbanApi/internal/shared/logging"
	"kanbanApi/internal/shared/session"
)

// UserAccounts is the part of the user service authentication needs.
type UserAccounts interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Add(ctx context.Context, user userdomain.User) (*userdomain.User, error)
	AddActivity(ctx context.Context, id, action, description string) error
}

// TokenCodec issues and opens login tokens.
type TokenCodec interface {
	auth.TokenIssuer
	auth.TokenValidator
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
	ImgURL   string `json:"imgUrl"`
	IsAdmin  bool   `json:"isAdmin"`
}

type AuthService struct {
	users   UserAccounts
	tokens  TokenCodec
	revoked revocation.Store
	cost    int
}

func NewAuthService(users UserAccounts, tokens TokenCodec, revoked revocation.Store) *AuthService {
	if revoked == nil {
		revoked = revocation.NewMemoryStore()
	}
	return &AuthService{users: users, tokens: tokens, revoked: revoked, cost: bcrypt.DefaultCost}
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*userdomain.User, error) {
	req.Email = userdomain.NormalizeEmail(req.Email)
	req.Fullname = strings.TrimSpace(req.Fullname)
	if req.Email == "" || req.Password == "" || req.Fullname == "" {
		return nil, apperr.Validation("missing required signup information")
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validation("email already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Validation("password cannot be hashed")
	}
	user, err := s.users.Add(ctx, userdomain.User{
		Email:    req.Email,
		Password: string(hash),
		Fullname: req.Fullname,
		ImgURL:   strings.TrimSpace(req.ImgURL),
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("account created", slog.String("userId", user.ID.Hex()))
	s.track(ctx, user.ID.Hex(), "signup", "Account created")
	user.Password = ""
	return user, nil
}

// Login checks the credentials. Unknown emails and wrong passwords fail the
// same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*userdomain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Authentication("invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Authentication("invalid email or password")
	}
	s.track(ctx, user.ID.Hex(), "login", "Logged in")
	user.Password = ""
	return user, nil
}

// LoginToken issues the cookie token carrying the user's identity projection.
func (s *AuthService) LoginToken(user *userdomain.User) (string, *auth.Claims, error) {
	return s.tokens.Issue(session.Identity{
		ID:       user.ID.Hex(),
		Email:    user.Email,
		Fullname: user.Fullname,
		ImgURL:   user.ImgURL,
		IsAdmin:  user.IsAdmin,
	})
}

// ValidateToken returns the identity in token, or false on any failure.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*session.Identity, bool) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		if !errors.Is(err, auth.ErrMissingToken) {
			logging.FromContext(ctx).Debug("login token rejected", slog.Any("error", err))
		}
		return nil, false
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		logging.FromContext(ctx).Warn("token revocation check failed", slog.Any("error", err))
		return nil, false
	}
	if revoked {
		return nil, false
	}
	return claims.Identity(), true
}

// Logout revokes token for the rest of its lifetime. Invalid tokens are
// ignored; there is nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Store("revoke token", err)
	}
	s.track(ctx, claims.Subject, "logout", "Logged out")
	return nil
}

// track appends to the user's own history. Failures are logged only.
func (s *AuthService) track(ctx context.Context, userID, action, description string) {
	if err := s.users.AddActivity(ctx, userID, action, description); err != nil {
		logging.FromContext(ctx).Warn("user activity not recorded", slog.String("userId", userID), slog.String("action", action), slog.Any("error", err))
	}
}
