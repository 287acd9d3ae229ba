package service

import (
	"context"
	"strings"

	"github.com/nextai/nextai/internal/model"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

const maxContactMessageLen = 5000

type ContactService struct {
	contacts *repo.ContactRepo
}

func NewContactService(contacts *repo.ContactRepo) *ContactService {
	return &ContactService{contacts: contacts}
}

func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*model.Contact, error) {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	if name == "" || message == "" || len(message) > maxContactMessageLen {
		return nil, appErr.ErrInvalid
	}
	item := &model.Contact{
		ID:      newID(),
		Name:    name,
		Email:   normalizeEmail(email),
		Message: message,
		Ctime:   timeutil.NowUnix(),
	}
	if err := s.contacts.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
