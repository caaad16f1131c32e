package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/keydock/keydock/internal/model"
)

// Postgres implements DocumentStore on a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Postgres.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// Insert persists a new key record. The record ID is assigned here and
// created_at/last_reset both come from the statement's now(), so they
// are identical at creation.
func (p *Postgres) Insert(ctx context.Context, input model.KeyRecordInput) (*model.KeyRecord, error) {
	query := `
		INSERT INTO key_records (record_id, key_value, owner_id, owner_email, usage_count, usage_limit, enabled, created_at, last_reset)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING created_at
	`

	record := &model.KeyRecord{
		RecordID:   ulid.Make().String(),
		KeyValue:   input.KeyValue,
		OwnerID:    input.OwnerID,
		OwnerEmail: input.OwnerEmail,
		UsageCount: input.UsageCount,
		UsageLimit: input.UsageLimit,
		Enabled:    input.Enabled,
	}

	err := p.pool.QueryRow(ctx, query,
		record.RecordID,
		record.KeyValue,
		record.OwnerID,
		record.OwnerEmail,
		record.UsageCount,
		record.UsageLimit,
		record.Enabled,
	).Scan(&record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert key record: %w", err)
	}

	record.LastReset = record.CreatedAt
	return record, nil
}

// QueryByOwner retrieves all key records for an owner, newest first.
func (p *Postgres) QueryByOwner(ctx context.Context, ownerID string) ([]model.KeyRecord, error) {
	query := `
		SELECT record_id, key_value, owner_id, owner_email, created_at, usage_count, usage_limit, last_reset, enabled
		FROM key_records
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query key records: %w", err)
	}
	defer rows.Close()

	records := make([]model.KeyRecord, 0)
	for rows.Next() {
		record, err := scanKeyRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan key record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key records: %w", err)
	}

	return records, nil
}

// FindActiveByOwner retrieves the newest enabled record for an owner.
func (p *Postgres) FindActiveByOwner(ctx context.Context, ownerID string) (*model.KeyRecord, error) {
	query := `
		SELECT record_id, key_value, owner_id, owner_email, created_at, usage_count, usage_limit, last_reset, enabled
		FROM key_records
		WHERE owner_id = $1 AND enabled
		ORDER BY created_at DESC
		LIMIT 1
	`

	record, err := scanKeyRecord(p.pool.QueryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find active key record: %w", err)
	}

	return record, nil
}

// DeleteByID removes a key record. Deleting an ID that does not exist
// succeeds; record_id is the sole deletion key.
func (p *Postgres) DeleteByID(ctx context.Context, recordID string) error {
	query := `DELETE FROM key_records WHERE record_id = $1`

	if _, err := p.pool.Exec(ctx, query, recordID); err != nil {
		return fmt.Errorf("failed to delete key record: %w", err)
	}

	return nil
}

// scanKeyRecord scans a row into a KeyRecord model.
func scanKeyRecord(row pgx.Row) (*model.KeyRecord, error) {
	var record model.KeyRecord

	err := row.Scan(
		&record.RecordID,
		&record.KeyValue,
		&record.OwnerID,
		&record.OwnerEmail,
		&record.CreatedAt,
		&record.UsageCount,
		&record.UsageLimit,
		&record.LastReset,
		&record.Enabled,
	)
	if err != nil {
		return nil, err
	}

	return &record, nil
}
