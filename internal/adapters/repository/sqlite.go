package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/pkg/metrics"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const selectColumns = `SELECT id, player_name, evaluator_name, evaluation_type, velocity,
	ratings, notes, average_score, created_at, updated_at FROM evaluations`

const newestFirst = ` ORDER BY created_at DESC, id DESC`

// SQLiteStore is a Store backed by a sqlite database file.
type SQLiteStore struct {
	db     *sql.DB
	opts   options
	closed atomic.Bool
}

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", dsn(path, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, opts: o}, nil
}

// dsn applies per-connection pragmas through the driver's _pragma parameter.
func dsn(path string, busy time.Duration) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, sep, busy.Milliseconds())
}

// DB exposes the underlying handle for migrations tooling.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, metrics.Since(start))
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

func (s *SQLiteStore) Insert(ctx context.Context, ev model.Evaluation) (_ model.Evaluation, err error) {
	defer func(start time.Time) { observe("insert", start, err) }(time.Now())
	if s.closed.Load() {
		return model.Evaluation{}, ErrClosed
	}

	stampTimes(&ev, s.opts.now)
	ratings, err := json.Marshal(ev.Ratings)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("encode ratings: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO evaluations
		(player_name, evaluator_name, evaluation_type, velocity, ratings, notes, average_score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.PlayerName, ev.EvaluatorName, string(ev.Type), ev.Velocity, string(ratings), ev.Notes,
		ev.AverageScore, ev.CreatedAt.UnixNano(), ev.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("insert evaluation: %w", err)
	}
	if ev.ID, err = res.LastInsertId(); err != nil {
		return model.Evaluation{}, fmt.Errorf("insert evaluation: %w", err)
	}
	return ev, nil
}

func (s *SQLiteStore) List(ctx context.Context) (_ []model.Evaluation, err error) {
	defer func(start time.Time) { observe("list", start, err) }(time.Now())
	return s.query(ctx, selectColumns+newestFirst)
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) (_ []model.Evaluation, err error) {
	defer func(start time.Time) { observe("recent", start, err) }(time.Now())
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return s.query(ctx, selectColumns+newestFirst+` LIMIT ?`, limit)
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (_ model.Evaluation, err error) {
	defer func(start time.Time) { observe("get", start, err) }(time.Now())
	out, err := s.query(ctx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return model.Evaluation{}, err
	}
	if len(out) == 0 {
		return model.Evaluation{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return out[0], nil
}

func (s *SQLiteStore) ByPlayer(ctx context.Context, name string) (_ []model.Evaluation, err error) {
	defer func(start time.Time) { observe("by_player", start, err) }(time.Now())
	return s.query(ctx, selectColumns+` WHERE player_name = ?`+newestFirst, name)
}

func (s *SQLiteStore) Count(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { observe("count", start, err) }(time.Now())
	if s.closed.Load() {
		return 0, ErrClosed
	}
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&n)
	return n, err
}

// Close closes the database. Further calls return ErrClosed.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]model.Evaluation, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	out := []model.Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanEvaluation(rows *sql.Rows) (model.Evaluation, error) {
	var (
		ev               model.Evaluation
		typ, ratings     string
		created, updated int64
	)
	if err := rows.Scan(&ev.ID, &ev.PlayerName, &ev.EvaluatorName, &typ, &ev.Velocity,
		&ratings, &ev.Notes, &ev.AverageScore, &created, &updated); err != nil {
		return model.Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}
	ev.Type = model.EvaluationType(typ)
	if err := json.Unmarshal([]byte(ratings), &ev.Ratings); err != nil {
		return model.Evaluation{}, fmt.Errorf("decode ratings of %d: %w", ev.ID, err)
	}
	ev.CreatedAt = time.Unix(0, created).UTC()
	ev.UpdatedAt = time.Unix(0, updated).UTC()
	return ev, nil
}

// stampTimes fills zero timestamps from now and normalises to UTC.
func stampTimes(ev *model.Evaluation, now func() time.Time) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = now()
	}
	if ev.UpdatedAt.IsZero() {
		ev.UpdatedAt = ev.CreatedAt
	}
	// Round to what the sqlite column can hold so both stores return the
	// same values.
	ev.CreatedAt = time.Unix(0, ev.CreatedAt.UnixNano()).UTC()
	ev.UpdatedAt = time.Unix(0, ev.UpdatedAt.UnixNano()).UTC()
}
