package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl}
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserContext `json:"user"`
}

// Login checks credentials and issues an access token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	claims := Claims{
		UserID:     user.ID,
		TenantID:   user.TenantID,
		RoleID:     user.RoleID,
		RoleName:   user.RoleName,
		EmployeeID: user.EmployeeID,
	}
	token, err := GenerateToken(s.Secret, claims, s.TTL)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}
	return LoginResult{Token: token, ExpiresAt: time.Now().Add(s.TTL).UTC(), User: claims.User()}, nil
}
