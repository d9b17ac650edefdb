// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the activity store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
	"github.com/Shivanand-hulikatti/activity-signup/internal/repository"
)

// ErrMissingEmail is returned when a signup or unregister names nobody.
var ErrMissingEmail = errors.New("missing email")

// Store is the persistence contract satisfied by both repositories.
type Store interface {
	List(ctx context.Context) (model.Activities, error)
	Get(ctx context.Context, name string) (*model.Activity, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, a model.Activity) error
	AddParticipant(ctx context.Context, name, email string) error
	RemoveParticipant(ctx context.Context, name, email string) error
}

// ActivityService orchestrates activity and roster operations.
type ActivityService struct {
	store  Store
	logger *zap.Logger
}

// NewActivityService constructs an ActivityService with its dependencies.
func NewActivityService(store Store, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{store: store, logger: logger}
}

// ListActivities returns the full collection in display order.
func (s *ActivityService) ListActivities(ctx context.Context) (model.Activities, error) {
	return s.store.List(ctx)
}

// Signup adds email to the named activity and returns the confirmation text.
func (s *ActivityService) Signup(ctx context.Context, name, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrMissingEmail
	}
	if err := s.store.AddParticipant(ctx, name, email); err != nil {
		if isDomainError(err) {
			return "", err
		}
		return "", fmt.Errorf("sign up for activity: %w", err)
	}
	s.logger.Info("participant signed up", zap.String("activity", name), zap.String("email", email))
	return fmt.Sprintf("Signed up %s for %s", email, name), nil
}

// Unregister removes email from the named activity and returns the
// confirmation text. The activity is checked before the email so an
// unknown activity always reports not found.
func (s *ActivityService) Unregister(ctx context.Context, name, email string) (string, error) {
	if _, err := s.store.Get(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("get activity: %w", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrMissingEmail
	}
	if err := s.store.RemoveParticipant(ctx, name, email); err != nil {
		if isDomainError(err) {
			return "", err
		}
		return "", fmt.Errorf("unregister from activity: %w", err)
	}
	s.logger.Info("participant unregistered", zap.String("activity", name), zap.String("email", email))
	return fmt.Sprintf("Unregistered %s from %s", email, name), nil
}

// SeedIfEmpty inserts activities when the store holds none and reports
// how many were inserted.
func (s *ActivityService) SeedIfEmpty(ctx context.Context, activities model.Activities) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for _, a := range activities {
		if err := s.store.Create(ctx, a); err != nil {
			return 0, fmt.Errorf("seed %q: %w", a.Name, err)
		}
	}
	return len(activities), nil
}

// isDomainError reports errors the handler maps to a client status.
func isDomainError(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrAlreadyRegistered) ||
		errors.Is(err, repository.ErrActivityFull) ||
		errors.Is(err, repository.ErrParticipantNotFound)
}
