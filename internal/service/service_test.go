package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Shivanand-hulikatti/activity-signup/internal/database"
	"github.com/Shivanand-hulikatti/activity-signup/internal/repository"
)

func newService(t *testing.T) *ActivityService {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := NewActivityService(repository.NewSQLiteActivityRepository(db), nil)
	if _, err := svc.SeedIfEmpty(context.Background(), DefaultActivities()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func TestSeedIfEmptyRunsOnce(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	n, err := svc.SeedIfEmpty(ctx, DefaultActivities())
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 0 {
		t.Fatalf("reseed inserted %d, want 0", n)
	}
	all, err := svc.ListActivities(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != len(DefaultActivities()) {
		t.Fatalf("activities = %d, want %d", len(all), len(DefaultActivities()))
	}
	if all[0].Name != "Chess Club" || all[len(all)-1].Name != "Debate Team" {
		t.Fatalf("order = %s .. %s", all[0].Name, all[len(all)-1].Name)
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	msg, err := svc.Signup(ctx, "Chess Club", "  testuser@example.com ")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if msg != "Signed up testuser@example.com for Chess Club" {
		t.Fatalf("message = %q", msg)
	}
	if _, err := svc.Signup(ctx, "Chess Club", "testuser@example.com"); !errors.Is(err, repository.ErrAlreadyRegistered) {
		t.Fatalf("duplicate err = %v", err)
	}
	if _, err := svc.Signup(ctx, "Chess Club", " "); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("blank email err = %v", err)
	}
	if _, err := svc.Signup(ctx, "Underwater Basket Weaving", "a@b.c"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown activity err = %v", err)
	}
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	msg, err := svc.Unregister(ctx, "Chess Club", "michael@mergington.edu")
	if err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if msg != "Unregistered michael@mergington.edu from Chess Club" {
		t.Fatalf("message = %q", msg)
	}
	if _, err := svc.Unregister(ctx, "Chess Club", "michael@mergington.edu"); !errors.Is(err, repository.ErrParticipantNotFound) {
		t.Fatalf("second unregister err = %v", err)
	}
}

func TestUnregisterChecksActivityBeforeEmail(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if _, err := svc.Unregister(ctx, "Nope", ""); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Unregister(ctx, "Chess Club", ""); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("err = %v, want ErrMissingEmail", err)
	}
}
