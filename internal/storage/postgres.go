package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/swim-timer/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

var resultColumns = []string{
	"race_id", "race_category", "rank", "age_category_rank", "gender_rank",
	"participant_id", "name", "age", "age_category", "gender", "club", "elapsed_seconds",
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 5
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 1
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// ReplaceResults swaps the published standings for those of raceID in one transaction
func (r *PostgresRepository) ReplaceResults(ctx context.Context, raceID string, rows []models.ResultRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM race_results`); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}

	source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		row := rows[i]
		return []any{
			raceID,
			nullString(row.RaceCategory),
			row.Rank,
			row.AgeCategoryRank,
			row.GenderRank,
			row.ParticipantID,
			row.Name,
			row.Age,
			row.AgeCategory,
			row.Gender,
			nullString(row.Club),
			row.ElapsedSeconds,
		}, nil
	})

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"race_results"}, resultColumns, source); err != nil {
		return fmt.Errorf("failed to insert results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	return nil
}

// ListResults returns the published standings in rank order
func (r *PostgresRepository) ListResults(ctx context.Context) ([]models.ResultRow, error) {
	query := `
		SELECT race_id, race_category, rank, age_category_rank, gender_rank,
		       participant_id, name, age, age_category, gender, club, elapsed_seconds
		FROM race_results
		ORDER BY rank
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []models.ResultRow
	for rows.Next() {
		var row models.ResultRow
		var raceCategory, club sql.NullString

		err := rows.Scan(
			&row.RaceID,
			&raceCategory,
			&row.Rank,
			&row.AgeCategoryRank,
			&row.GenderRank,
			&row.ParticipantID,
			&row.Name,
			&row.Age,
			&row.AgeCategory,
			&row.Gender,
			&club,
			&row.ElapsedSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		row.RaceCategory = raceCategory.String
		row.Club = club.String
		results = append(results, row)
	}

	return results, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
