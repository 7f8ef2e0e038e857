package activity

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateNotification(ctx context.Context, notification *Notification) error
	CreateLog(ctx context.Context, entry *LogEntry) error
	ListNotifications(ctx context.Context, query FeedQuery) ([]Notification, int64, error)
	ListLogs(ctx context.Context, query FeedQuery) ([]LogEntry, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateNotification(ctx context.Context, notification *Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repository) CreateLog(ctx context.Context, entry *LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListNotifications(ctx context.Context, query FeedQuery) ([]Notification, int64, error) {
	var totalCount int64
	if err := r.db.WithContext(ctx).Model(&Notification{}).Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var notifications []Notification
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset(query)).
		Limit(limit(query)).
		Find(&notifications).Error
	return notifications, totalCount, err
}

func (r *repository) ListLogs(ctx context.Context, query FeedQuery) ([]LogEntry, int64, error) {
	var totalCount int64
	if err := r.db.WithContext(ctx).Model(&LogEntry{}).Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var entries []LogEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset(query)).
		Limit(limit(query)).
		Find(&entries).Error
	return entries, totalCount, err
}

func limit(query FeedQuery) int {
	if query.Limit <= 0 {
		return 50
	}
	return query.Limit
}

func offset(query FeedQuery) int {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	return (page - 1) * limit(query)
}
