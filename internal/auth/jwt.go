package auth

import (
	"errors"
	"fmt"
	"time"

	"markethub_backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeAccess      = "access"
	purposeEmailVerify = "email_verify"

	// Ссылка верификации живет сутки
	emailVerifyTTL = 24 * time.Hour
)

// Claims - полезная нагрузка JWT
type Claims struct {
	UserID  string `json:"uid"`
	IsAdmin bool   `json:"adm"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.GetConfig().JWT.Secret)
}

// GenerateToken выпускает access token для пользователя
func GenerateToken(userID string, isAdmin bool) (string, error) {
	ttl := time.Duration(config.GetConfig().JWT.TTL) * time.Minute
	claims := &Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		Purpose: purposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// GenerateEmailVerificationToken выпускает токен для ссылки подтверждения email
func GenerateEmailVerificationToken(userID string) (string, error) {
	claims := &Claims{
		UserID:  userID,
		Purpose: purposeEmailVerify,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(emailVerifyTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ParseToken валидирует access token и возвращает claims
func ParseToken(tokenStr string) (*Claims, error) {
	return parseWithPurpose(tokenStr, purposeAccess)
}

// ParseEmailVerificationToken валидирует токен подтверждения email
func ParseEmailVerificationToken(tokenStr string) (*Claims, error) {
	return parseWithPurpose(tokenStr, purposeEmailVerify)
}

func parseWithPurpose(tokenStr, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, errors.New("token purpose mismatch")
	}
	return claims, nil
}
