package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zlnvch/notekeep/models"
	"github.com/zlnvch/notekeep/store"
)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionClaims is the identity a verified session token carries.
type SessionClaims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Service) IssueToken(subject string, email string, ttl time.Duration) (string, error) {
	issuedAt := s.Clock()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func (s *Service) verifyJWT(tokenString string) (SessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Clock),
	)
	if err != nil {
		return SessionClaims{}, err
	}

	if !token.Valid {
		return SessionClaims{}, errors.New("invalid token")
	}

	if claims.Subject == "" {
		return SessionClaims{}, errors.New("missing sub claim")
	}
	if claims.IssuedAt == nil {
		return SessionClaims{}, errors.New("missing iat claim")
	}

	return SessionClaims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyToken reports ok=false for any token that is malformed, forged,
// expired or not yet valid. It never returns partial claims.
func (s *Service) VerifyToken(token string) (SessionClaims, bool) {
	if token == "" {
		return SessionClaims{}, false
	}

	claims, err := s.verifyJWT(token)
	if err != nil {
		s.Logger.Debug("session token rejected", zap.Error(err))
		return SessionClaims{}, false
	}

	return claims, true
}

// Authenticate resolves a session token to its claims or ErrUnauthorized.
func (s *Service) Authenticate(token string) (SessionClaims, error) {
	claims, ok := s.VerifyToken(token)
	if !ok {
		return SessionClaims{}, errNoSession
	}
	return claims, nil
}

func (s *Service) Register(ctx context.Context, email string, password string) (models.User, string, error) {
	email = NormalizeEmail(email)
	if err := ValidateRegistration(email, password); err != nil {
		return models.User{}, "", err
	}

	_, err := s.Store.GetUserByEmail(ctx, email)
	if err == nil {
		return models.User{}, "", errEmailTaken
	}
	if !errors.Is(err, store.ErrItemNotFound) {
		return models.User{}, "", fmt.Errorf("lookup user failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password failed: %w", err)
	}

	now := s.now()
	user, err := s.Store.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, store.ErrItemExists) {
			return models.User{}, "", errEmailTaken
		}
		return models.User{}, "", fmt.Errorf("create user failed: %w", err)
	}

	token, err := s.IssueToken(user.Id, user.Email, s.SessionTTL)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	s.Logger.Info("user registered", zap.String("userId", user.Id))
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, email string, password string) (models.User, string, error) {
	if email == "" || password == "" {
		return models.User{}, "", invalidInput("email and password are required")
	}
	email = NormalizeEmail(email)

	user, err := s.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrItemNotFound) {
			return models.User{}, "", fmt.Errorf("lookup user failed: %w", err)
		}
		bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return models.User{}, "", errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", errInvalidCredentials
	}

	token, err := s.IssueToken(user.Id, user.Email, s.SessionTTL)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	return user, token, nil
}
