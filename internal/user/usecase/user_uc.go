package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bazario/listing-service/internal/platform/logger"
	"github.com/bazario/listing-service/internal/user/domain"
)

const tokenTTL = 24 * time.Hour

// Claims is the JWT payload carried by session tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type UserUsecase struct {
	repo      domain.UserRepository
	jwtSecret []byte
	logger    *logger.Logger
}

func NewUserUsecase(repo domain.UserRepository, jwtSecret string, log *logger.Logger) *UserUsecase {
	return &UserUsecase{repo: repo, jwtSecret: []byte(jwtSecret), logger: log}
}

// Register creates an account. The account id doubles as the seller id
// recorded on listings.
func (uc *UserUsecase) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", domain.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		uc.logger.Warn("Register: failed", "username", username, "error", err.Error())
		return nil, err
	}

	uc.logger.Info("Register: user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login checks the credentials and issues a signed session token.
func (uc *UserUsecase) Login(ctx context.Context, username, password string) (string, error) {
	user, err := uc.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Warn("Login: wrong password", "username", username)
		return "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	signed, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", err
	}

	uc.logger.Info("Login: token issued", "user_id", user.ID)
	return signed, nil
}

// VerifyToken resolves a bearer token to the owner identity. Any
// failure is reported as ErrUnauthenticated.
func (uc *UserUsecase) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("token is invalid: %w", domain.ErrUnauthenticated)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("token carries no user id: %w", domain.ErrUnauthenticated)
	}
	return claims.UserID, nil
}

func (uc *UserUsecase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.repo.FindByID(ctx, userID)
}
