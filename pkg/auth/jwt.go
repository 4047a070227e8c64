package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// JWTCustomClaims содержит поля токена, выдаваемого сервисом авторизации
type JWTCustomClaims struct {
	UserID      string   `json:"user_id"`
	Blocked     bool     `json:"blocked"`
	Permissions []string `json:"permissions"`
	Roles       []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTService проверяет токены, подписанные общим секретом (HS256)
type JWTService struct {
	secret        []byte
	leeway        time.Duration
	expirationHrs int
	issuer        string
}

// NewJWTService создает новый сервис JWT
func NewJWTService(secret string, leeway time.Duration, expirationHrs int, issuer string) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	if leeway < 0 {
		leeway = 0
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:        []byte(secret),
		leeway:        leeway,
		expirationHrs: expirationHrs,
		issuer:        issuer,
	}, nil
}

// GenerateToken выпускает токен для пользователя.
// Основной выпуск токенов делает сервис авторизации; здесь он нужен для служебных клиентов.
func (s *JWTService) GenerateToken(userID string, permissions []string, blocked bool) (string, error) {
	if userID == "" {
		return "", errors.New("user id cannot be empty")
	}
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:      userID,
		Blocked:     blocked,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expirationHrs) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена с учетом допуска leeway
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims := &JWTCustomClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				log.Printf("[JWT] Ошибка: Токен имеет неверный формат")
				return nil, fmt.Errorf("token is malformed: %w", apperrors.ErrUnauthorized)
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				log.Printf("[JWT] Ошибка: Неверная подпись токена")
				return nil, fmt.Errorf("signature is invalid: %w", apperrors.ErrUnauthorized)
			}
		}
		return nil, fmt.Errorf("token validation failed: %v: %w", err, apperrors.ErrUnauthorized)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
	}

	now := time.Now()
	if !claims.VerifyExpiresAt(now.Add(-s.leeway), true) {
		log.Printf("[JWT] Ошибка: Токен истек для пользователя ID=%s", claims.UserID)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrExpiredToken, apperrors.ErrUnauthorized)
	}
	if !claims.VerifyNotBefore(now.Add(s.leeway), false) {
		return nil, fmt.Errorf("token not valid yet: %w", apperrors.ErrUnauthorized)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no user_id: %w", apperrors.ErrUnauthorized)
	}

	return claims, nil
}
