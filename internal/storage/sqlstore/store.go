// Package sqlstore implements storage.Provider's data methods over
// database/sql. The sqlite and postgres packages own connection setup and
// migrations and embed a *Store for everything else.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/metrics"
	"github.com/julianstephens/lifeos/internal/storage"
)

// Dialect captures the differences between the supported SQL backends.
type Dialect struct {
	Name string
	// Dollar selects $1-style bind parameters instead of ?.
	Dollar bool
}

var (
	SQLite   = Dialect{Name: constants.BackendSQLite}
	Postgres = Dialect{Name: constants.BackendPostgres, Dollar: true}
)

var errNotLoaded = errors.New("storage not loaded")

type Store struct {
	db      *sql.DB
	dialect Dialect
	userID  string
	now     func() time.Time
	newID   func() string
}

type Option func(*Store)

// WithClock overrides the time source used for timestamps and derived fields.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithUserID scopes all reads and writes to userID.
func WithUserID(userID string) Option {
	return func(s *Store) {
		if userID != "" {
			s.userID = userID
		}
	}
}

func New(d Dialect, opts ...Option) *Store {
	s := &Store{
		dialect: d,
		userID:  constants.DefaultUserID,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind attaches an open connection. Data methods fail until it is called.
func (s *Store) Bind(db *sql.DB) {
	s.db = db
}

// DB returns the bound connection, or nil before Bind.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) UserID() string {
	return s.userID
}

func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.db, nil
}

func (s *Store) track(op string) func() {
	timer := metrics.TrackRemoteCall(s.dialect.Name, op)
	return func() { timer.ObserveDuration() }
}

// rebind rewrites ? placeholders for dialects that need positional ones.
func (s *Store) rebind(query string) string {
	if !s.dialect.Dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing only when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// exec runs a statement that must touch a row, mapping zero rows to ErrNotFound.
func (s *Store) execOne(ctx context.Context, q querier, kind, id, query string, args ...any) error {
	res, err := q.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.NotFound(kind, id)
	}
	return nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.NotFound(kind, id)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(field, v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func parseTimePtr(field string, v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(field, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// nextOrder returns one past the highest order_index in table for the scope.
func (s *Store) nextOrder(ctx context.Context, q querier, table, scopeCol, scope string) (int, error) {
	var max sql.NullInt64
	query := fmt.Sprintf("SELECT MAX(order_index) FROM %s WHERE %s = ?", table, scopeCol)
	if err := q.QueryRowContext(ctx, s.rebind(query), scope).Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}
