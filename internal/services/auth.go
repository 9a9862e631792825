package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/ctxutil"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context) (accessToken, refreshToken string, err error)
	Logout(ctx context.Context) error
	ParseUserID(tokenString string) (uuid.UUID, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationFailed, errors.New("invalid email"))
	}
	if len(password) < 8 {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationFailed, errors.New("password must be at least 8 characters"))
	}

	exists, err := as.userRepo.EmailExists(dbctx.New(ctx, nil), email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierr.New(http.StatusConflict, apierr.CodeConflict, errors.New("email already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}

	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := as.userRepo.Create(dbctx.New(ctx, tx), []*domain.User{user})
		return cErr
	}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	as.log.Info("User registered", "user_id", user.ID.String())
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := as.userRepo.GetByEmails(dbctx.New(ctx, nil), []string{email})
	if err != nil {
		return "", "", fmt.Errorf("fetch user by email: %w", err)
	}
	if len(users) == 0 {
		return "", "", apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("invalid credentials"))
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("invalid credentials"))
	}

	var accessToken, refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx, tx)

		// one live refresh token per user
		if dErr := as.userTokenRepo.DeleteByUserIDs(dbc, []uuid.UUID{user.ID}); dErr != nil {
			return fmt.Errorf("clear old tokens: %w", dErr)
		}

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()

		userToken := &domain.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		_, cErr := as.userTokenRepo.Create(dbc, []*domain.UserToken{userToken})
		return cErr
	}); err != nil {
		return "", "", err
	}

	as.log.Info("User logged in", "user_id", user.ID.String())
	return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context) (string, string, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("missing refresh token"))
	}

	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx, tx)

		existing, ftErr := as.userTokenRepo.GetByRefreshToken(dbc, rd.RefreshToken)
		if ftErr != nil {
			if errors.Is(ftErr, gorm.ErrRecordNotFound) {
				return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("unknown refresh token"))
			}
			return fmt.Errorf("fetch refresh token: %w", ftErr)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			_ = as.userTokenRepo.DeleteByUserIDs(dbc, []uuid.UUID{existing.UserID})
			return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("refresh token expired"))
		}

		users, uErr := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if uErr != nil {
			return fmt.Errorf("load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("user not found for refresh token"))
		}
		user := users[0]

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()

		// rotate: delete old row, insert new
		if dErr := as.userTokenRepo.DeleteByUserIDs(dbc, []uuid.UUID{user.ID}); dErr != nil {
			return fmt.Errorf("remove old refresh token: %w", dErr)
		}
		newToken := &domain.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: newRefreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		_, cErr := as.userTokenRepo.Create(dbc, []*domain.UserToken{newToken})
		return cErr
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == "" {
		return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("not authenticated"))
	}
	userID, err := uuid.Parse(rd.UserID)
	if err != nil {
		return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("invalid user id"))
	}
	return as.userTokenRepo.DeleteByUserIDs(dbctx.New(ctx, nil), []uuid.UUID{userID})
}

// ParseUserID verifies the access token signature and expiry and returns the
// subject user id.
func (as *authService) ParseUserID(tokenString string) (uuid.UUID, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("invalid access token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("invalid token subject"))
	}
	return userID, nil
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
