package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayforge/bidflow/internal/bid"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Migrate creates the bidflow tables.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bid_activities (
			id UUID PRIMARY KEY,
			bid_id TEXT NOT NULL,
			agent_type TEXT NOT NULL,
			action TEXT NOT NULL,
			details JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_bid_activities_bid_id ON bid_activities(bid_id, created_at);
		CREATE TABLE IF NOT EXISTS bids (
			bid_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			accepted_room_types TEXT[] NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS workflow_runs (
			id UUID PRIMARY KEY,
			bid_id TEXT NOT NULL,
			rfp_id TEXT NOT NULL,
			supplier_id TEXT NOT NULL,
			current_step TEXT NOT NULL,
			status TEXT NOT NULL,
			results JSONB NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_runs_bid_id ON workflow_runs(bid_id, completed_at DESC);
	`)
	return err
}

func (p *Postgres) RecordActivity(ctx context.Context, entry bid.ActivityEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal activity details: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		"INSERT INTO bid_activities (id, bid_id, agent_type, action, details, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		entry.ID, entry.BidID, string(entry.AgentType), entry.Action, details, entry.Timestamp,
	)
	return err
}

func (p *Postgres) ListActivities(ctx context.Context, bidID string) ([]bid.ActivityEntry, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT id, bid_id, agent_type, action, details, created_at FROM bid_activities WHERE bid_id = $1 ORDER BY created_at",
		bidID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []bid.ActivityEntry
	for rows.Next() {
		var entry bid.ActivityEntry
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.BidID, &entry.AgentType, &entry.Action, &details, &entry.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("unmarshal activity details: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (p *Postgres) UpdateBidStatus(ctx context.Context, bidID, status string, acceptedRoomTypes []string) error {
	if acceptedRoomTypes == nil {
		acceptedRoomTypes = []string{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO bids (bid_id, status, accepted_room_types, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (bid_id) DO UPDATE
		SET status = EXCLUDED.status, accepted_room_types = EXCLUDED.accepted_room_types, updated_at = CURRENT_TIMESTAMP`,
		bidID, status, acceptedRoomTypes,
	)
	return err
}

func (p *Postgres) SaveRun(ctx context.Context, run bid.Run) error {
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("marshal run results: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO workflow_runs (id, bid_id, rfp_id, supplier_id, current_step, status, results, error, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.BidID, run.RFPID, run.SupplierID, string(run.CurrentStep), string(run.Status),
		results, run.Error, run.StartedAt, run.CompletedAt,
	)
	return err
}

func (p *Postgres) GetRun(ctx context.Context, bidID string) (*bid.Run, error) {
	var run bid.Run
	var results []byte
	err := p.pool.QueryRow(ctx, `
		SELECT id, bid_id, rfp_id, supplier_id, current_step, status, results, error, started_at, completed_at
		FROM workflow_runs WHERE bid_id = $1 ORDER BY completed_at DESC LIMIT 1`,
		bidID,
	).Scan(&run.ID, &run.BidID, &run.RFPID, &run.SupplierID, &run.CurrentStep, &run.Status,
		&results, &run.Error, &run.StartedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(results, &run.Results); err != nil {
		return nil, fmt.Errorf("unmarshal run results: %w", err)
	}
	return &run, nil
}
