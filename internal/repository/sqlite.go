package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
)

// SQLiteActivityRepository persists activities and rosters in SQLite.
// The handle is expected to be limited to a single connection, which
// serialises the read-check-write sequences below.
type SQLiteActivityRepository struct {
	db *sql.DB
}

// NewSQLiteActivityRepository constructs a SQLiteActivityRepository.
func NewSQLiteActivityRepository(db *sql.DB) *SQLiteActivityRepository {
	return &SQLiteActivityRepository{db: db}
}

// List returns every activity with its roster, both in insertion order.
func (r *SQLiteActivityRepository) List(ctx context.Context) (model.Activities, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description, schedule, max_participants
		 FROM activities
		 ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	activities := model.Activities{}
	index := map[string]int{}
	for rows.Next() {
		a := model.Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		index[a.Name] = len(activities)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list activities: %w", err)
	}
	rows.Close()

	prows, err := r.db.QueryContext(ctx,
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
func (r *SQLiteActivityRepository) Get(ctx context.Context, name string) (*model.Activity, error) {
	a := model.Activity{Participants: []string{}}
	err := r.db.QueryRowContext(ctx,
		`SELECT name, description, schedule, max_participants
		 FROM activities WHERE name = ?`,
		name,
	).Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT email FROM participants WHERE activity_name = ? ORDER BY seq ASC`,
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
func (r *SQLiteActivityRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

// Create inserts an activity together with its initial roster.
func (r *SQLiteActivityRepository) Create(ctx context.Context, a model.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activities (name, description, schedule, max_participants)
		 VALUES (?, ?, ?, ?)`,
		a.Name, a.Description, a.Schedule, a.MaxParticipants,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrActivityExists
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	for _, email := range a.Participants {
		if err := insertSQLiteParticipant(ctx, tx, a.Name, email); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AddParticipant appends email to the activity's roster.
func (r *SQLiteActivityRepository) AddParticipant(ctx context.Context, name, email string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT max_participants FROM activities WHERE name = ?`,
		name,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("read activity: %w", err)
	}

	var enrolled, dup int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN email = ? THEN 1 ELSE 0 END), 0)
		 FROM participants WHERE activity_name = ?`,
		email, name,
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

	if err := insertSQLiteParticipant(ctx, tx, name, email); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RemoveParticipant deletes email from the activity's roster.
func (r *SQLiteActivityRepository) RemoveParticipant(ctx context.Context, name, email string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var found string
	err = tx.QueryRowContext(ctx, `SELECT name FROM activities WHERE name = ?`, name).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("read activity: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM participants WHERE activity_name = ? AND email = ?`,
		name, email,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if n == 0 {
		return ErrParticipantNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertSQLiteParticipant(ctx context.Context, tx *sql.Tx, name, email string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO participants (id, activity_name, email, created_at)
		 VALUES (?, ?, ?, ?)`,
		uuid.NewString(), name, email, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE ||
		sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
}
