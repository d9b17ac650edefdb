// Package repository implements the activity stores. The PostgreSQL store
// uses pgx directly (no ORM); the SQLite store uses database/sql with the
// pure-Go modernc driver.
package repository

import "errors"

// ErrNotFound is returned when the activity does not exist.
var ErrNotFound = errors.New("activity not found")

// ErrAlreadyRegistered is returned when the same participant signs up twice.
var ErrAlreadyRegistered = errors.New("participant already signed up")

// ErrActivityFull is returned when an activity has no remaining capacity.
var ErrActivityFull = errors.New("activity is full")

// ErrParticipantNotFound is returned when unregistering someone not on the roster.
var ErrParticipantNotFound = errors.New("participant not found in activity")

// ErrActivityExists is returned when creating an activity whose name is taken.
var ErrActivityExists = errors.New("activity already exists")
