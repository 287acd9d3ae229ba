package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/nextai/nextai/internal/filestore"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

var allowedAvatarExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type UserService struct {
	users *repo.UserRepo
	store filestore.Store
}

func NewUserService(users *repo.UserRepo, store filestore.Store) *UserService {
	return &UserService{users: users, store: store}
}

// UploadAvatar stores the image and records its key on the user. The old
// avatar, if any, is left in the store; keys are content-addressed per upload.
func (s *UserService) UploadAvatar(ctx context.Context, userID, filename string, r filestore.ReadSeekCloser, size int64) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedAvatarExts[ext] {
		return "", appErr.ErrInvalid
	}
	key := fmt.Sprintf("avatar_%s_%s%s", userID, newID(), ext)
	if err := s.store.Save(ctx, key, r, size); err != nil {
		return "", err
	}
	if err := s.users.UpdateAvatar(ctx, userID, key, timeutil.NowUnix()); err != nil {
		return "", err
	}
	return key, nil
}

// OpenFile opens a stored object for serving.
func (s *UserService) OpenFile(ctx context.Context, key string) (filestore.ReadSeekCloser, error) {
	return s.store.Open(ctx, key)
}
