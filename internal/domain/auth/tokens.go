package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	UserID     string `json:"uid"`
	TenantID   string `json:"tid"`
	RoleID     string `json:"rid"`
	RoleName   string `json:"role"`
	EmployeeID string `json:"eid,omitempty"`
	jwt.RegisteredClaims
}

// UserContext is the authenticated caller stored on the request context.
type UserContext struct {
	UserID     string `json:"id"`
	TenantID   string `json:"tenantId"`
	RoleID     string `json:"roleId"`
	RoleName   string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (u UserContext) IsHR() bool {
	return u.RoleName == RoleHR
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c Claims) User() UserContext {
	return UserContext{
		UserID:     c.UserID,
		TenantID:   c.TenantID,
		RoleID:     c.RoleID,
		RoleName:   c.RoleName,
		EmployeeID: c.EmployeeID,
	}
}
