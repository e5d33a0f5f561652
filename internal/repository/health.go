package repository

import "context"

// DatabaseHealth is the health-check surface of a record store backend.
// Both the SQLite and PostgreSQL connections satisfy it; the server's
// health endpoint depends only on this.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
