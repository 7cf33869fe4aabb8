package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS decision_events (
	id UUID PRIMARY KEY,
	time TIMESTAMPTZ NOT NULL,
	type TEXT NOT NULL,
	description TEXT NOT NULL,
	data JSONB
);
CREATE INDEX IF NOT EXISTS idx_decision_events_type_time ON decision_events (type, time)`

// Transaction context key
type txKey struct{}

// WithTransaction adds a transaction to the context
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTransaction retrieves a transaction from context, or returns nil if not present
func GetTransaction(ctx context.Context) *sql.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return nil
}

// Postgres is a Journaler backed by lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects to connStr and makes sure the events table exists.
func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	p := NewPostgres(db)
	if err := p.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply journal schema: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// executeWithTransaction runs fn in the context transaction if there is one,
// otherwise in a new transaction that it commits or rolls back.
func (p *Postgres) executeWithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	if tx := GetTransaction(ctx); tx != nil {
		return fn(tx)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if fnErr := fn(tx); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %w (original error: %v)", rbErr, fnErr)
		}
		return fnErr
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("transaction commit failed: %w", commitErr)
	}
	return nil
}

func (p *Postgres) queryWithTransaction(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if tx := GetTransaction(ctx); tx != nil {
		return tx.QueryContext(ctx, query, args...)
	}
	return p.db.QueryContext(ctx, query, args...)
}

func (p *Postgres) LogEvent(ctx context.Context, event Event) error {
	event = normalize(event)
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}
	return p.executeWithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO decision_events (id, time, type, description, data) VALUES ($1,$2,$3,$4,$5)`,
			event.ID, event.Time, event.Type, event.Description, string(data))
		if err != nil {
			return fmt.Errorf("failed to log event: %w", err)
		}
		return nil
	})
}

func (p *Postgres) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error) {
	rows, err := p.queryWithTransaction(ctx, `
		SELECT id, time, type, description, data FROM decision_events
		WHERE ($1 = '' OR type = $1) AND time >= $2 AND time < $3
		ORDER BY time ASC`, eventType, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var data []byte
		if err := rows.Scan(&e.ID, &e.Time, &e.Type, &e.Description, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.Data); err != nil {
				return nil, fmt.Errorf("failed to decode event %s data: %w", e.ID, err)
			}
		}
		e.Time = e.Time.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}
