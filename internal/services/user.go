package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-backend/internal/data/repos"
	"github.com/studybuddy/studybuddy-backend/internal/domain"
	"github.com/studybuddy/studybuddy-backend/internal/platform/apierr"
	"github.com/studybuddy/studybuddy-backend/internal/platform/dbctx"
	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

type UserService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) (*domain.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	users, err := us.userRepo.GetByIDs(dbctx.New(ctx, nil), []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("user not found"))
	}
	return users[0], nil
}

func (us *userService) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) (*domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeValidationFailed, errors.New("display name required"))
	}

	if err := us.userRepo.UpdateDisplayName(dbctx.New(ctx, nil), userID, displayName); err != nil {
		return nil, fmt.Errorf("update display name: %w", err)
	}
	return us.Get(ctx, userID)
}
