// Package profile provides the self-service profile use cases
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxAvatarBytes is the avatar size limit when none is configured
const DefaultMaxAvatarBytes = 2 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// Service implements inbound.ProfileService
type Service struct {
	users     outbound.UserRepository
	storage   outbound.StorageService
	validator *security.Validator
	maxAvatar int64
	logger    *zap.Logger
}

var _ inbound.ProfileService = (*Service)(nil)

// NewService creates a new profile service
func NewService(users outbound.UserRepository, storage outbound.StorageService, validator *security.Validator, maxAvatarBytes int64, logger *zap.Logger) *Service {
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = DefaultMaxAvatarBytes
	}
	return &Service{
		users:     users,
		storage:   storage,
		validator: validator,
		maxAvatar: maxAvatarBytes,
		logger:    logger.Named("profile-service"),
	}
}

// GetProfile returns the caller's profile
func (s *Service) GetProfile(ctx context.Context, actor inbound.Actor) (*inbound.UserDTO, error) {
	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	dto := inbound.NewUserDTO(u)
	return &dto, nil
}

// UpdateProfile edits name, age, gender, phone and location
func (s *Service) UpdateProfile(ctx context.Context, actor inbound.Actor, cmd inbound.UpdateProfileCommand) (*inbound.UserDTO, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := u.UpdateProfile(user.ProfileUpdate{
		Name:     cmd.Name,
		Age:      cmd.Age,
		Gender:   cmd.Gender,
		Phone:    cmd.Phone,
		Location: cmd.Location,
	}); err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, apperrors.NewDatabaseError("update profile", err)
	}

	dto := inbound.NewUserDTO(u)
	return &dto, nil
}

// UploadAvatar stores a PNG or JPEG image and records its URL
func (s *Service) UploadAvatar(ctx context.Context, actor inbound.Actor, cmd inbound.UploadAvatarCommand) (*inbound.UserDTO, error) {
	if len(cmd.Data) == 0 {
		return nil, apperrors.NewBadRequestError("Avatar file is empty")
	}
	if int64(len(cmd.Data)) > s.maxAvatar {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Avatar must not exceed %d bytes", s.maxAvatar))
	}

	// trust the bytes, not the declared header
	contentType := http.DetectContentType(cmd.Data)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, apperrors.NewBadRequestError("Avatar must be a PNG or JPEG image")
	}

	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", u.ID(), uuid.NewString(), ext)
	url, err := s.storage.Upload(ctx, key, cmd.Data, contentType)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("object storage", err)
	}

	u.SetAvatar(url)
	if err := s.users.Update(ctx, u); err != nil {
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.logger.Warn("Failed to remove orphaned avatar", zap.String("key", key), zap.Error(derr))
		}
		return nil, apperrors.NewDatabaseError("save avatar", err)
	}

	s.logger.Info("Avatar uploaded", zap.String("user_id", u.ID().String()), zap.Int("bytes", len(cmd.Data)))
	dto := inbound.NewUserDTO(u)
	return &dto, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("look up user", err)
	}
	return u, nil
}
