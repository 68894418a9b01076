package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"droneops-dispatch/internal/fleet"
)

const stateDocID = "default"

// Postgres keeps the document as one jsonb row in dispatch_state.
type Postgres struct {
	DB *sql.DB
}

// OpenPostgres connects to databaseURL and makes sure the table exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// Init creates the state table.
func (p *Postgres) Init(ctx context.Context) error {
	const q = `
	CREATE TABLE IF NOT EXISTS dispatch_state (
		id         TEXT PRIMARY KEY,
		doc        JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := p.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create dispatch_state table: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context) (*fleet.State, error) {
	var doc []byte
	err := p.DB.QueryRowContext(ctx, `SELECT doc FROM dispatch_state WHERE id = $1`, stateDocID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return fleet.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load dispatch state: %w", err)
	}
	s := fleet.NewState()
	if err := json.Unmarshal(doc, s); err != nil {
		return nil, fmt.Errorf("decode dispatch state: %w", err)
	}
	return s, nil
}

func (p *Postgres) Save(ctx context.Context, s *fleet.State) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode dispatch state: %w", err)
	}
	const q = `
	INSERT INTO dispatch_state (id, doc, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at;`
	if _, err := p.DB.ExecContext(ctx, q, stateDocID, doc); err != nil {
		return fmt.Errorf("save dispatch state: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}
