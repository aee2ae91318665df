package api

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Roma7-7-7/love-dialect/internal/config"
)

type JWTProcessor struct {
	issuer         string
	audience       []string
	accessExpireIn time.Duration

	secret []byte
}

func NewJWTProcessor(conf config.JWT, accessExpireIn time.Duration) *JWTProcessor {
	return &JWTProcessor{
		issuer:         conf.Issuer,
		audience:       conf.Audience,
		accessExpireIn: accessExpireIn,

		secret: []byte(conf.Secret),
	}
}

// ToAccessToken signs a token whose subject is the session id.
func (p *JWTProcessor) ToAccessToken(sessionID string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    p.issuer,
		Subject:   sessionID,
		Audience:  p.audience,
		ExpiresAt: jwt.NewNumericDate(now.Add(p.accessExpireIn)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	})

	signedString, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedString, nil
}

func (p *JWTProcessor) ParseAccessToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithIssuer(p.issuer))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return "", errors.New("invalid token claims")
	}

	if aud, _ := parsed.Claims.GetAudience(); !containsAll(aud, p.audience) {
		return "", errors.New("invalid audience")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("get subject: %w", err)
	}
	if subject == "" {
		return "", errors.New("empty subject")
	}
	return subject, nil
}

// containsAll returns true if all elements in required are present in actual
func containsAll(actual, required []string) bool {
	for _, r := range required {
		if !slices.Contains(actual, r) {
			return false
		}
	}
	return true
}
