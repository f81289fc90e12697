package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	cipherCost  = 12
	defaultRole = "user"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is what the service puts into a token.
type Claims struct {
	UserID uint
	Email  string
	Role   string
	Expire int64
}

func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cipherCost)
	return string(hash), err
}

func CheckPassword(hash, pwd string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd)) == nil
}

// GenerateJWT returns a "Bearer <token>" string signed with secret.
func GenerateJWT(userID uint, email, role, secret string, ttl time.Duration) (string, error) {
	if role == "" {
		role = defaultRole
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return "Bearer " + signed, err
}

// ParseJWT accepts the token with or without the "Bearer " prefix.
func ParseJWT(tk, secret string) (*Claims, error) {
	tk = strings.TrimSpace(tk)
	if strings.HasPrefix(strings.ToLower(tk), "bearer ") {
		tk = strings.TrimSpace(tk[7:])
	}
	if tk == "" {
		return nil, errors.New("empty token")
	}
	token, err := jwt.Parse(tk, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// numbers come back as float64 from JSON
	id, ok1 := claims["user_id"].(float64)
	email, ok2 := claims["email"].(string)
	role, ok3 := claims["role"].(string)
	exp, ok4 := claims["exp"].(float64)
	if !ok1 || !ok2 || !ok3 || !ok4 || id <= 0 {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: uint(id), Email: email, Role: role, Expire: int64(exp)}, nil
}
