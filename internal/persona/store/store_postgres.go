package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"personadesk/internal/persona"
	"personadesk/pkg/platform/sentinel"
)

// Schema creates the personas table. The unique constraint on api_user_id is
// what the atomic upsert conflicts on; it must never be dropped.
const Schema = `
CREATE TABLE IF NOT EXISTS personas (
    id               UUID PRIMARY KEY,
    api_user_id      TEXT NOT NULL UNIQUE,
    job_title        TEXT NOT NULL DEFAULT '',
    company          TEXT NOT NULL DEFAULT '',
    industry         TEXT NOT NULL DEFAULT '',
    linkedin_profile TEXT NOT NULL DEFAULT '',
    phone            TEXT NOT NULL DEFAULT '',
    website          TEXT NOT NULL DEFAULT '',
    bio              TEXT NOT NULL DEFAULT '',
    raw_notes        TEXT NOT NULL DEFAULT '',
    persona_summary  TEXT NOT NULL DEFAULT '',
    image            TEXT NOT NULL DEFAULT '',
    country          TEXT NOT NULL DEFAULT '',
    pain_points      JSONB NOT NULL DEFAULT '[]',
    goals            JSONB NOT NULL DEFAULT '[]',
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_researched  TIMESTAMPTZ
);`

const selectColumns = `id, api_user_id, job_title, company, industry, linkedin_profile,
    phone, website, bio, raw_notes, persona_summary, image, country,
    pain_points, goals, updated_at, last_researched`

// PostgresStore persists persona records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed persona store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindByExternalRef(ctx context.Context, externalRef string) (*persona.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM personas WHERE api_user_id = $1`, externalRef)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find persona by external ref: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) FindByExternalRefs(ctx context.Context, externalRefs []string) (map[string]*persona.Record, error) {
	if len(externalRefs) == 0 {
		return map[string]*persona.Record{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM personas WHERE api_user_id = ANY($1)`, externalRefs)
	if err != nil {
		return nil, fmt.Errorf("find personas by external refs: %w", err)
	}
	defer rows.Close()

	found := make(map[string]*persona.Record, len(externalRefs))
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan persona row: %w", err)
		}
		found[record.ExternalRef] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persona rows: %w", err)
	}
	return found, nil
}

// Upsert inserts or updates in a single statement. ON CONFLICT on the
// api_user_id unique constraint closes the race two concurrent first-time
// saves would otherwise hit with a read-then-write upsert.
func (s *PostgresStore) Upsert(ctx context.Context, record *persona.Record) (*persona.Record, error) {
	painPoints, err := json.Marshal(sliceOrEmpty(record.PainPoints))
	if err != nil {
		return nil, fmt.Errorf("marshal pain points: %w", err)
	}
	goals, err := json.Marshal(sliceOrEmpty(record.Goals))
	if err != nil {
		return nil, fmt.Errorf("marshal goals: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
INSERT INTO personas (
    id, api_user_id, job_title, company, industry, linkedin_profile,
    phone, website, bio, raw_notes, persona_summary, image, country,
    pain_points, goals, updated_at, last_researched
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), $16
)
ON CONFLICT (api_user_id) DO UPDATE SET
    job_title        = EXCLUDED.job_title,
    company          = EXCLUDED.company,
    industry         = EXCLUDED.industry,
    linkedin_profile = EXCLUDED.linkedin_profile,
    phone            = EXCLUDED.phone,
    website          = EXCLUDED.website,
    bio              = EXCLUDED.bio,
    raw_notes        = EXCLUDED.raw_notes,
    persona_summary  = EXCLUDED.persona_summary,
    image            = EXCLUDED.image,
    country          = EXCLUDED.country,
    pain_points      = EXCLUDED.pain_points,
    goals            = EXCLUDED.goals,
    updated_at       = now(),
    last_researched  = EXCLUDED.last_researched
RETURNING `+selectColumns,
		uuid.New(), record.ExternalRef, record.JobTitle, record.Company, record.Industry,
		record.LinkedIn, record.Phone, record.Website, record.Bio, record.RawNotes,
		record.PersonaSummary, record.Image, record.Country,
		painPoints, goals, record.LastResearched,
	)

	stored, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("upsert persona: %w", err)
	}
	return stored, nil
}

func scanRecord(row pgx.Row) (*persona.Record, error) {
	var (
		record     persona.Record
		painPoints []byte
		goals      []byte
	)
	err := row.Scan(
		&record.LocalID, &record.ExternalRef, &record.JobTitle, &record.Company,
		&record.Industry, &record.LinkedIn, &record.Phone, &record.Website,
		&record.Bio, &record.RawNotes, &record.PersonaSummary, &record.Image,
		&record.Country, &painPoints, &goals, &record.UpdatedAt, &record.LastResearched,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(painPoints, &record.PainPoints); err != nil {
		return nil, fmt.Errorf("unmarshal pain points: %w", err)
	}
	if err := json.Unmarshal(goals, &record.Goals); err != nil {
		return nil, fmt.Errorf("unmarshal goals: %w", err)
	}
	return &record, nil
}

func sliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
