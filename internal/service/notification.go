package service

import (
	"context"
	"errors"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

const maxNotificationPageSize = 100

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxNotificationPageSize {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	notes, total, err := s.noteRepo.List(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, 0, internalError(err)
	}
	return notes, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	err := s.noteRepo.MarkAsRead(ctx, notificationID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewAppError(domain.ErrCodeNotificationNotFound)
	}
	if err != nil {
		return internalError(err)
	}
	return nil
}
