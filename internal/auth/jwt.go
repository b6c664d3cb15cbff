package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims - то, что нам нужно из токена: кто и в какой роли
type Claims struct {
	UserID string          `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager проверяет (и для dev/тестов выпускает) HS256 токены
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken выпускает токен. Регистрация и вход живут вне этого сервиса.
func (m *TokenManager) GenerateToken(userID string, role models.UserRole) (string, error) {
	if err := validateIdentity(userID, role); err != nil {
		return "", err
	}
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := validateIdentity(claims.UserID, claims.Role); err != nil {
		return nil, err
	}
	return claims, nil
}

// user id входит в ключ переписки через "_", поэтому "_" в нём запрещён
func validateIdentity(userID string, role models.UserRole) error {
	if userID == "" || strings.Contains(userID, "_") {
		return fmt.Errorf("%w: bad user id", ErrInvalidToken)
	}
	if !role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}
	return nil
}
