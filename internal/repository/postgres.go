package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
)

const pgUniqueViolation = "23505"

// ActivityRepository persists activities and rosters in PostgreSQL.
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns every activity with its roster, both in insertion order.
func (r *ActivityRepository) List(ctx context.Context) (model.Activities, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, description, schedule, max_participants
		 FROM activities
		 ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := model.Activities{}
	index := map[string]int{}
	for rows.Next() {
		a := model.Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		index[a.Name] = len(activities)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	prows, err := r.db.Query(ctx,
		`SELECT activity_name, email FROM participants ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if i, ok := index[name]; ok {
			activities[i].Participants = append(activities[i].Participants, email)
		}
	}
	return activities, prows.Err()
}

// Get returns a single activity with its roster, or ErrNotFound.
func (r *ActivityRepository) Get(ctx context.Context, name string) (*model.Activity, error) {
	a := model.Activity{Participants: []string{}}
	err := r.db.QueryRow(ctx,
		`SELECT name, description, schedule, max_participants
		 FROM activities WHERE name = $1`,
		name,
	).Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT email FROM participants WHERE activity_name = $1 ORDER BY seq ASC`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		a.Participants = append(a.Participants, email)
	}
	return &a, rows.Err()
}

// Count returns the number of activities.
func (r *ActivityRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

// Create inserts an activity together with its initial roster.
func (r *ActivityRepository) Create(ctx context.Context, a model.Activity) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO activities (name, description, schedule, max_participants)
		 VALUES ($1, $2, $3, $4)`,
		a.Name, a.Description, a.Schedule, a.MaxParticipants,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrActivityExists
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	for _, email := range a.Participants {
		_, err = tx.Exec(ctx,
			`INSERT INTO participants (id, activity_name, email, created_at)
			 VALUES ($1, $2, $3, $4)`,
			uuid.New(), a.Name, email, time.Now().UTC(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AddParticipant appends email to the activity's roster.
//
// The activity row is locked with SELECT … FOR UPDATE for the duration of
// the transaction, so concurrent signups for the same activity are
// serialised and the capacity check cannot be raced past.
func (r *ActivityRepository) AddParticipant(ctx context.Context, name, email string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT max_participants FROM activities WHERE name = $1 FOR UPDATE`,
		name,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock activity row: %w", err)
	}

	var enrolled, dup int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE email = $2)
		 FROM participants WHERE activity_name = $1`,
		name, email,
	).Scan(&enrolled, &dup)
	if err != nil {
		return fmt.Errorf("count participants: %w", err)
	}
	if dup > 0 {
		return ErrAlreadyRegistered
	}
	if enrolled >= capacity {
		return ErrActivityFull
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO participants (id, activity_name, email, created_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New(), name, email, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert participant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RemoveParticipant deletes email from the activity's roster.
func (r *ActivityRepository) RemoveParticipant(ctx context.Context, name, email string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var found string
	err = tx.QueryRow(ctx,
		`SELECT name FROM activities WHERE name = $1 FOR UPDATE`,
		name,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock activity row: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM participants WHERE activity_name = $1 AND email = $2`,
		name, email,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
