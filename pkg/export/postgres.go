package export

import (
	"context"
	"fmt"
	"iter"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-pregel/pkg/graph"
)

// CopyExecer is the part of a pgx connection the sink needs.
// *pgxpool.Pool and *pgx.Conn satisfy it.
type CopyExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var _ CopyExecer = (*pgxpool.Pool)(nil)

// NewPostgresPool opens and verifies a connection pool
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return pool, nil
}

// PostgresSink bulk loads the table with COPY
type PostgresSink struct {
	db          CopyExecer
	table       pgx.Identifier
	createTable bool
}

// PostgresOption configures a PostgresSink
type PostgresOption func(*PostgresSink)

// WithCreateTable creates the target table when it does not exist
func WithCreateTable() PostgresOption {
	return func(s *PostgresSink) {
		s.createTable = true
	}
}

// NewPostgresSink creates a sink for table, which may be schema qualified
func NewPostgresSink(db CopyExecer, table string, opts ...PostgresOption) *PostgresSink {
	s := &PostgresSink{db: db, table: pgx.Identifier(strings.Split(table, "."))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write copies every row of table
func (s *PostgresSink) Write(ctx context.Context, table *Table) (int64, error) {
	if s.createTable {
		if _, err := s.db.Exec(ctx, createTableSQL(s.table, table)); err != nil {
			return 0, fmt.Errorf("failed to create table %s: %w", s.table.Sanitize(), err)
		}
	}

	columns := append([]string{NodeIDColumn}, table.ColumnNames()...)
	src := newRowSource(table)
	defer src.stop()

	n, err := s.db.CopyFrom(ctx, s.table, columns, src)
	if err != nil {
		return n, fmt.Errorf("failed to copy into %s: %w", s.table.Sanitize(), err)
	}
	return n, nil
}

func createTableSQL(name pgx.Identifier, table *Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(name.Sanitize())
	b.WriteString(" (")
	b.WriteString(pgx.Identifier{NodeIDColumn}.Sanitize())
	b.WriteString(" BIGINT PRIMARY KEY")
	for _, c := range table.Columns() {
		b.WriteString(", ")
		b.WriteString(pgx.Identifier{c.Key}.Sanitize())
		b.WriteString(" ")
		b.WriteString(sqlType(c.Type))
	}
	b.WriteString(")")
	return b.String()
}

func sqlType(t graph.ValueType) string {
	switch t {
	case graph.TypeLong:
		return "BIGINT"
	case graph.TypeDouble:
		return "DOUBLE PRECISION"
	case graph.TypeLongArray:
		return "BIGINT[]"
	default:
		return "DOUBLE PRECISION[]"
	}
}

// rowSource adapts the table iterator to pgx.CopyFromSource
type rowSource struct {
	next func() (Row, bool)
	stop func()
	row  Row
	err  error
}

func newRowSource(table *Table) *rowSource {
	next, stop := iter.Pull(table.Rows())
	return &rowSource{next: next, stop: stop}
}

func (r *rowSource) Next() bool {
	if r.err != nil {
		return false
	}
	row, ok := r.next()
	if !ok {
		return false
	}
	if row.NodeID > math.MaxInt64 {
		r.err = fmt.Errorf("node id %d does not fit a BIGINT column", row.NodeID)
		return false
	}
	r.row = row
	return true
}

func (r *rowSource) Values() ([]any, error) {
	values := make([]any, 0, len(r.row.Values)+1)
	values = append(values, int64(r.row.NodeID))
	for _, v := range r.row.Values {
		switch v.Type {
		case graph.TypeLong:
			values = append(values, v.Long)
		case graph.TypeDouble:
			values = append(values, v.Double)
		case graph.TypeLongArray:
			values = append(values, v.LongArray)
		default:
			values = append(values, v.DoubleArray)
		}
	}
	return values, nil
}

func (r *rowSource) Err() error {
	return r.err
}
