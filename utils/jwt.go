package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"barberhive/config"

	"github.com/golang-jwt/jwt"
)

const (
	devFallbackSecret = "barberhive-dev-secret"
	sessionIssuer     = "barberhive"
)

// SessionClaims is the payload of an owner session token. Subject is the shop id.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

func secretKey() []byte {
	if config.AppConfig.JWTSecret != "" {
		return []byte(config.AppConfig.JWTSecret)
	}
	return []byte(devFallbackSecret)
}

// IssueSessionToken signs an HS256 owner session for shopID valid for ttl.
func IssueSessionToken(shopID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   shopID,
			Issuer:    sessionIssuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey())
}

// SessionShopID verifies signature, expiry and issuer and returns the shop id.
func SessionShopID(tokenString string) (string, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secretKey(), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Issuer != sessionIssuer {
		return "", errors.New("invalid session token")
	}
	if claims.Subject == "" {
		return "", errors.New("session token without subject")
	}
	return claims.Subject, nil
}

// HashToken is the stored form of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
