package users

import (
	"context"

	"github.com/google/uuid"
)

// ActivitySink records user lifecycle changes for the admin log feed.
// Implemented in the routes wiring to avoid a dependency on the activity
// package here.
type ActivitySink interface {
	UserDeleted(ctx context.Context, email string)
}

type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	// DisplayNames resolves user ids to full names; missing ids (deleted
	// accounts) map to "unknown".
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	SetActivitySink(sink ActivitySink)
}

type service struct {
	repo     Repository
	activity ActivitySink
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetActivitySink(sink ActivitySink) {
	s.activity = sink
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserResponse, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]UserResponse, 0, len(all))
	for i := range all {
		responses = append(responses, all[i].ToResponse())
	}
	return responses, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// Reservations keep the user id as a weak reference; their owner now
	// displays as "unknown".
	if s.activity != nil {
		s.activity.UserDeleted(ctx, user.Email)
	}
	return nil
}

func (s *service) DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	found, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		names[id] = "unknown"
	}
	for i := range found {
		names[found[i].ID] = found[i].FullName()
	}
	return names, nil
}
