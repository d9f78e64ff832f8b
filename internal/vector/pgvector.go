package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgvectorIndex stores entries in a PostgreSQL table with a pgvector column.
// Several namespaces can share one table; each keeps its model tag in <table>_meta.
type PgvectorIndex struct {
	pool       *pgxpool.Pool
	table      string
	namespace  string
	dimensions int
	modelID    string
}

var _ VectorIndex = (*PgvectorIndex)(nil)

// NewPgvectorIndex connects to connString and creates the extension, table and meta row if needed.
func NewPgvectorIndex(ctx context.Context, connString, table string, dimensions int, modelID, namespace string) (*PgvectorIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if table == "" {
		table = "tanya_chunks"
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	p := &PgvectorIndex{
		pool:       pool,
		table:      table,
		namespace:  namespace,
		dimensions: dimensions,
		modelID:    modelID,
	}
	if err := p.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *PgvectorIndex) initialize(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			namespace TEXT NOT NULL,
			document_id TEXT NOT NULL,
			file_id BIGINT NOT NULL DEFAULT 0,
			owner_id BIGINT NOT NULL DEFAULT 0,
			chunk_index INTEGER NOT NULL,
			page INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, p.table, p.dimensions)
	if _, err := p.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_namespace_idx ON %s (namespace, owner_id)`, p.table, p.table)
	if _, err := p.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	createMeta := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s_meta (
			namespace TEXT PRIMARY KEY,
			model_id TEXT NOT NULL,
			dimensions INTEGER NOT NULL
		)`, p.table)
	if _, err := p.pool.Exec(ctx, createMeta); err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}

	insertMeta := fmt.Sprintf(`INSERT INTO %s_meta (namespace, model_id, dimensions) VALUES ($1, $2, $3)
		ON CONFLICT (namespace) DO NOTHING`, p.table)
	if _, err := p.pool.Exec(ctx, insertMeta, p.namespace, p.modelID, p.dimensions); err != nil {
		return fmt.Errorf("failed to write model tag: %w", err)
	}

	var storedModel string
	var storedDims int
	err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT model_id, dimensions FROM %s_meta WHERE namespace = $1`, p.table),
		p.namespace).Scan(&storedModel, &storedDims)
	if err != nil {
		return fmt.Errorf("failed to read model tag: %w", err)
	}
	if storedDims != p.dimensions {
		return fmt.Errorf("%w: table has %d, index expects %d", ErrDimensionMismatch, storedDims, p.dimensions)
	}
	if storedModel != p.modelID {
		return fmt.Errorf("%w: namespace %s was built with %q, configured embedder is %q",
			ErrModelMismatch, p.namespace, storedModel, p.modelID)
	}
	return nil
}

// Add inserts entries in a single transaction.
func (p *PgvectorIndex) Add(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if len(e.Vector) != p.dimensions {
			return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(e.Vector), p.dimensions)
		}
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, namespace, document_id, file_id, owner_id, chunk_index, page, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, p.table)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(stmt, e.ID, p.namespace, e.Metadata.DocumentID, e.Metadata.FileID, e.Metadata.OwnerID,
			e.Metadata.ChunkIndex, e.Metadata.Page, e.Text, pgvector.NewVector(e.Vector))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert entries: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Search orders by cosine distance; the score is 1 - distance.
func (p *PgvectorIndex) Search(ctx context.Context, query []float32, k int, filter *Filter) ([]*Result, error) {
	if len(query) != p.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), p.dimensions)
	}
	results := []*Result{}
	if k <= 0 {
		return results, nil
	}
	var ownerID, fileID int64
	if filter != nil {
		ownerID, fileID = filter.OwnerID, filter.FileID
	}

	q := fmt.Sprintf(`
		SELECT id, content, document_id, file_id, owner_id, chunk_index, page, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE namespace = $2
		  AND ($3::bigint = 0 OR owner_id = $3)
		  AND ($4::bigint = 0 OR file_id = $4)
		ORDER BY embedding <=> $1, created_at
		LIMIT $5`, p.table)

	rows, err := p.pool.Query(ctx, q, pgvector.NewVector(query), p.namespace, ownerID, fileID, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Text, &r.Metadata.DocumentID, &r.Metadata.FileID, &r.Metadata.OwnerID,
			&r.Metadata.ChunkIndex, &r.Metadata.Page, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// Size counts the entries in this namespace.
func (p *PgvectorIndex) Size(ctx context.Context) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE namespace = $1`, p.table), p.namespace).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (p *PgvectorIndex) Dimensions() int   { return p.dimensions }
func (p *PgvectorIndex) ModelID() string   { return p.modelID }
func (p *PgvectorIndex) Namespace() string { return p.namespace }

// Close closes the connection pool.
func (p *PgvectorIndex) Close() error {
	p.pool.Close()
	return nil
}
