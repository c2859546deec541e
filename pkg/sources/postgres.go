package sources

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"github.com/searchd-io/searchd/pkg/types"

	// Import migrations to register them with goose
	_ "github.com/searchd-io/searchd/pkg/sources/migrations"
)

// PostgresSource searches a document table with ILIKE ranking
type PostgresSource struct {
	db     *sql.DB
	config types.PostgresConfig
}

// NewPostgresSource opens a connection pool against the configured database
func NewPostgresSource(cfg types.PostgresConfig) (*PostgresSource, error) {
	// Apply defaults
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.Database == "" {
		cfg.Database = "searchd"
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to postgres")

	return &PostgresSource{db: db, config: cfg}, nil
}

// RunMigrations applies registered goose migrations
func (s *PostgresSource) RunMigrations() error {
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(s.db, ".")
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}

const searchQuery = `
SELECT id, title, body,
	CASE
		WHEN lower(title) LIKE lower($1) || '%' THEN 3.0
		WHEN title ILIKE '%' || $1 || '%' THEN 2.0
		ELSE 1.0
	END AS score
FROM document
WHERE title ILIKE '%' || $1 || '%' OR body ILIKE '%' || $1 || '%'
ORDER BY score DESC, id ASC
LIMIT $2 OFFSET $3`

const countQuery = `
SELECT COUNT(*) FROM document
WHERE title ILIKE '%' || $1 || '%' OR body ILIKE '%' || $1 || '%'`

func (s *PostgresSource) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	page := req.Page
	if page < 0 {
		page = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, req.Query).Scan(&total); err != nil {
		return nil, wrapBackendErr(ctx, "postgres", err)
	}

	rows, err := s.db.QueryContext(ctx, searchQuery, req.Query, perPage, page*perPage)
	if err != nil {
		return nil, wrapBackendErr(ctx, "postgres", err)
	}
	defer rows.Close()

	docs := []types.SearchDocument{}
	for rows.Next() {
		var doc types.SearchDocument
		if err := rows.Scan(&doc.Id, &doc.Title, &doc.Body, &doc.Score); err != nil {
			return nil, &types.ErrSearchDecode{Endpoint: "postgres", Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapBackendErr(ctx, "postgres", err)
	}

	return &types.SearchResponse{
		Documents: docs,
		Total:     total,
		Page:      page,
	}, nil
}
