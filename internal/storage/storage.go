package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"costbook/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrWriteFailed        = errors.New("write failed")
	ErrReadFailed         = errors.New("read failed")
	ErrBlocked            = errors.New("destroy blocked by open connections")
)

// handles tracks open connections per database name so Destroy can refuse
// to remove files that are still in use by another handle.
var handles = struct {
	sync.Mutex
	open map[string]int
}{open: make(map[string]int)}

// DB is a live handle to one named cost database. Handles are explicit:
// every operation goes through the handle returned by Connect, and Destroy
// requires all handles to the name to be closed first.
type DB struct {
	name      string
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Connect opens (creating or upgrading if needed) the named database under
// dir at the given schema version and returns a live handle. Connecting
// repeatedly with the same name and version is idempotent: the costs
// collection is never duplicated or reset.
func Connect(ctx context.Context, dir, name string, version uint) (*DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", ErrStorageUnavailable, err)
	}
	path := filepath.Join(dir, name+".db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageUnavailable, path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrStorageUnavailable, path, err)
	}

	if err := migrateTo(path, version); err != nil {
		db.Close()
		return nil, err
	}

	handles.Lock()
	handles.open[name]++
	handles.Unlock()

	slog.InfoContext(ctx, "Cost database opened", "name", name, "version", version, "path", path)
	return &DB{name: name, db: db}, nil
}

// Close releases the handle. Safe to call more than once.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		handles.Lock()
		if handles.open[d.name] > 0 {
			handles.open[d.name]--
		}
		handles.Unlock()
		d.closeErr = d.db.Close()
	})
	return d.closeErr
}

// Insert validates the payload, stamps the recording time and store-assigned
// ID, and persists the record in a single write transaction. The stored
// record is returned; on failure nothing is committed.
func (d *DB) Insert(ctx context.Context, in core.CostInput) (core.CostRecord, error) {
	if err := in.Validate(); err != nil {
		return core.CostRecord{}, err
	}
	recordedAt := time.Now().UTC()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return core.CostRecord{}, fmt.Errorf("%w: begin transaction: %v", ErrWriteFailed, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO costs (sum, currency, category, description, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		in.Sum.String(), string(in.Currency), in.Category, in.Description,
		recordedAt.Format(time.RFC3339Nano))
	if err != nil {
		tx.Rollback()
		return core.CostRecord{}, fmt.Errorf("%w: insert cost: %v", ErrWriteFailed, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return core.CostRecord{}, fmt.Errorf("%w: last insert id: %v", ErrWriteFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return core.CostRecord{}, fmt.Errorf("%w: commit insert: %v", ErrWriteFailed, err)
	}

	slog.InfoContext(ctx, "Cost saved",
		"id", id,
		"sum", in.Sum,
		"currency", in.Currency,
		"category", in.Category)

	return core.CostRecord{
		ID:          id,
		Sum:         in.Sum,
		Currency:    in.Currency,
		Category:    in.Category,
		Description: in.Description,
		RecordedAt:  recordedAt,
	}, nil
}

// FetchAll returns every stored record in unspecified order; period
// filtering and ordering are the report builder's responsibility.
func (d *DB) FetchAll(ctx context.Context) ([]core.CostRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, sum, currency, category, description, recorded_at FROM costs`)
	if err != nil {
		return nil, fmt.Errorf("%w: query costs: %v", ErrReadFailed, err)
	}
	defer rows.Close()

	var records []core.CostRecord
	for rows.Next() {
		var (
			r          core.CostRecord
			sum        string
			currency   string
			recordedAt string
		)
		if err := rows.Scan(&r.ID, &sum, &currency, &r.Category, &r.Description, &recordedAt); err != nil {
			return nil, fmt.Errorf("%w: scan cost: %v", ErrReadFailed, err)
		}
		if r.Sum, err = decimal.NewFromString(sum); err != nil {
			return nil, fmt.Errorf("%w: parse sum %q: %v", ErrReadFailed, sum, err)
		}
		if r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("%w: parse recorded_at %q: %v", ErrReadFailed, recordedAt, err)
		}
		r.Currency = core.Currency(currency)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate costs: %v", ErrReadFailed, err)
	}
	return records, nil
}

// Clear deletes every record in the costs collection in one transaction.
func (d *DB) Clear(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ErrWriteFailed, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM costs`); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: clear costs: %v", ErrWriteFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit clear: %v", ErrWriteFailed, err)
	}
	slog.InfoContext(ctx, "Costs cleared", "name", d.name)
	return nil
}

// Destroy removes the named database entirely. It fails with ErrBlocked,
// leaving all data intact, while any handle to the name is still open.
func Destroy(dir, name string) error {
	handles.Lock()
	n := handles.open[name]
	handles.Unlock()
	if n > 0 {
		return fmt.Errorf("%w: %d open connection(s) to %q", ErrBlocked, n, name)
	}

	path := filepath.Join(dir, name+".db")
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: remove %s: %v", ErrWriteFailed, p, err)
		}
	}
	slog.Info("Cost database destroyed", "name", name, "path", path)
	return nil
}
