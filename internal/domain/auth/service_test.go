package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	users     map[string]AuthUser
	lastLogin string
}

func (f *fakeStore) FindActiveUserByEmail(_ context.Context, email string) (AuthUser, error) {
	user, ok := f.users[email]
	if !ok {
		return AuthUser{}, ErrInvalidCredentials
	}
	return user, nil
}

func (f *fakeStore) UpdateLastLogin(_ context.Context, userID string) error {
	f.lastLogin = userID
	return nil
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("pa55word")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	store := &fakeStore{users: map[string]AuthUser{
		"lead@example.com": {ID: "u1", TenantID: "t1", RoleID: "r1", RoleName: RoleLeader, EmployeeID: "e1", Password: hash},
	}}
	svc := NewService(store, "secret", time.Hour)

	res, err := svc.Login(context.Background(), " lead@example.com ", "pa55word")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.User.EmployeeID != "e1" || store.lastLogin != "u1" {
		t.Fatalf("unexpected login result: %+v", res)
	}
	claims, err := ParseToken("secret", res.Token)
	if err != nil || claims.RoleName != RoleLeader {
		t.Fatalf("expected parseable token, got %+v %v", claims, err)
	}

	for _, tc := range []struct{ email, password string }{
		{"lead@example.com", "nope"},
		{"ghost@example.com", "pa55word"},
		{"", ""},
	} {
		if _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %q, got %v", tc.email, err)
		}
	}
}
