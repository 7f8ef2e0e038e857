package activity

import (
	"context"

	"buslane/internal/notifier"
	"buslane/internal/shared/faults"
	"buslane/pkg/logger"
)

// Service records dashboard feed entries and mirrors each notification onto
// the live event stream. Recording failures are logged, never surfaced: the
// feed is an observer of the booking flow, not a participant.
type Service interface {
	RecordNotification(ctx context.Context, notificationType, description string)
	RecordLog(ctx context.Context, actor, action, subject string)
	ListNotifications(ctx context.Context, query FeedQuery) (*NotificationFeed, error)
	ListLogs(ctx context.Context, query FeedQuery) (*LogFeed, error)
}

// NotificationFeed is the paginated dashboard feed envelope.
type NotificationFeed struct {
	Notifications []Notification `json:"notifications"`
	TotalCount    int64          `json:"total_count"`
}

// LogFeed is the paginated audit feed envelope.
type LogFeed struct {
	Logs       []LogEntry `json:"logs"`
	TotalCount int64      `json:"total_count"`
}

type service struct {
	repo   Repository
	events *notifier.Service
	log    *logger.Logger
}

func NewService(repo Repository, events *notifier.Service) Service {
	return &service{
		repo:   repo,
		events: events,
		log:    logger.GetDefault(),
	}
}

func (s *service) RecordNotification(ctx context.Context, notificationType, description string) {
	notification := &Notification{
		Type:        notificationType,
		Description: description,
	}
	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		s.log.WithError(err).Warn("failed to record notification",
			"type", notificationType)
		return
	}

	if s.events != nil {
		s.events.Emit(notifier.EventNewNotification, notifier.TopicNotifications, notification)
	}
}

func (s *service) RecordLog(ctx context.Context, actor, action, subject string) {
	entry := &LogEntry{
		Actor:   actor,
		Action:  action,
		Subject: subject,
	}
	if err := s.repo.CreateLog(ctx, entry); err != nil {
		s.log.WithError(err).Warn("failed to record log entry",
			"action", action)
	}
}

func (s *service) ListNotifications(ctx context.Context, query FeedQuery) (*NotificationFeed, error) {
	notifications, totalCount, err := s.repo.ListNotifications(ctx, query)
	if err != nil {
		return nil, faults.Unavailable(err)
	}
	return &NotificationFeed{Notifications: notifications, TotalCount: totalCount}, nil
}

func (s *service) ListLogs(ctx context.Context, query FeedQuery) (*LogFeed, error) {
	logs, totalCount, err := s.repo.ListLogs(ctx, query)
	if err != nil {
		return nil, faults.Unavailable(err)
	}
	return &LogFeed{Logs: logs, TotalCount: totalCount}, nil
}
