package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studysync/internal/domain"
)

// Manager signs and verifies HMAC API tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims is what a verified token asserts about the caller.
type Claims struct {
	UserID string
	Role   domain.Role
}

// Issue signs a token for the user.
func (m *Manager) Issue(userID string, role domain.Role) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(m.ttl)),
	})
	return token.SignedString(m.secret)
}

// Parse verifies a bearer token (with or without the "Bearer " prefix) and
// extracts its claims.
func (m *Manager) Parse(tokenStr string) (Claims, error) {
	tokenStr = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenStr), "Bearer"))

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("unexpected claims type")
	}
	userID, _ := mapClaims["sub"].(string)
	if userID == "" {
		return Claims{}, fmt.Errorf("token missing subject")
	}
	role, _ := mapClaims["role"].(string)
	return Claims{UserID: userID, Role: domain.Role(role)}, nil
}
