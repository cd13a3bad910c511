package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/rs/zerolog"

	"accountsvc/internal/ids"
	"accountsvc/internal/media/sniffer"
	"accountsvc/internal/metrics"
	"accountsvc/internal/models"
)

// AvatarStorage is satisfied by storage.ObjectStore.
type AvatarStorage interface {
	PutAvatar(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type AvatarInput struct {
	File         io.Reader
	DeclaredType string
}

type AvatarService struct {
	creds   *CredentialStore
	store   AvatarStorage
	maxSize int64
	log     zerolog.Logger
}

func NewAvatarService(creds *CredentialStore, store AvatarStorage, maxSize int64, log zerolog.Logger) *AvatarService {
	return &AvatarService{
		creds:   creds,
		store:   store,
		maxSize: maxSize,
		log:     log,
	}
}

const (
	msgPhotoRequired = "Please upload a photo"
	msgPhotoTooLarge = "Photo is too large"
	msgPhotoFormat   = "Photo must be a JPEG, PNG, GIF or WEBP image"
)

// Upload stores the image as the user's new photo and returns the updated
// user.
func (s *AvatarService) Upload(ctx context.Context, userID string, input AvatarInput) (models.User, error) {
	user, err := s.upload(ctx, userID, input)
	recordOutcome(metrics.EventAvatarUpload, err)
	return user, err
}

func (s *AvatarService) upload(ctx context.Context, userID string, input AvatarInput) (models.User, error) {
	if input.File == nil {
		return models.User{}, newError(ErrValidation, msgPhotoRequired)
	}

	user, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxSize+1))
	if err != nil {
		return models.User{}, fmt.Errorf("read photo: %w", err)
	}
	if len(data) == 0 {
		return models.User{}, newError(ErrValidation, msgPhotoRequired)
	}
	if int64(len(data)) > s.maxSize {
		return models.User{}, newError(ErrValidation, msgPhotoTooLarge)
	}

	result, err := sniffer.DetectHead(data)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) {
			return models.User{}, newError(ErrValidation, msgPhotoFormat)
		}
		return models.User{}, fmt.Errorf("detect type: %w", err)
	}
	if input.DeclaredType != "" && input.DeclaredType != "application/octet-stream" && input.DeclaredType != result.MIME {
		return models.User{}, newError(ErrValidation, msgPhotoFormat)
	}

	key := path.Join(user.ID, ids.New()+"."+result.Ext())
	url, err := s.store.PutAvatar(ctx, key, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return models.User{}, err
	}

	if err := s.creds.Update(ctx, &user, models.UserPatch{Photo: &url}); err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("object", key).Msg("avatar uploaded")
	return user, nil
}
