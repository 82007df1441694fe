// Package backup keeps rotating snapshots of the local SQLite database.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/lifeos/internal/constants"
	"github.com/julianstephens/lifeos/internal/logger"
)

const (
	// DefaultKeep is how many snapshots survive rotation.
	DefaultKeep = 14
	DirName     = "backups"

	filePrefix  = constants.AppName + "-"
	fileSuffix  = ".db"
	stampLayout = "20060102-150405"
)

// ErrNoDatabase is returned when there is nothing to snapshot.
var ErrNoDatabase = errors.New("database does not exist")

// Snapshot describes one file in the backup directory.
type Snapshot struct {
	Path    string
	TakenAt time.Time
	Size    int64
}

func (s Snapshot) Name() string { return filepath.Base(s.Path) }

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

type Option func(*Manager)

// WithKeep overrides the rotation limit. Values below one disable rotation.
func WithKeep(n int) Option {
	return func(m *Manager) { m.keep = n }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDir stores snapshots somewhere other than next to the database.
func WithDir(dir string) Option {
	return func(m *Manager) { m.dir = dir }
}

func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   DefaultKeep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string { return m.dir }

// Create writes a consistent copy of the database and rotates old snapshots.
func (m *Manager) Create(ctx context.Context) (Snapshot, error) {
	snap, err := m.create(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.Prune(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.dir, "error", err)
	}
	return snap, nil
}

func (m *Manager) create(ctx context.Context) (Snapshot, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
		}
		return Snapshot{}, fmt.Errorf("failed to access database: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	taken := m.now().UTC()
	dest, err := m.freePath(taken)
	if err != nil {
		return Snapshot{}, err
	}

	db, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := ping(ctx, db); err != nil {
		return Snapshot{}, fmt.Errorf("database appears to be corrupted: %w", err)
	}
	// VACUUM INTO produces a defragmented copy without holding a write lock
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		db.Close()
		if err := copyFile(m.dbPath, dest); err != nil {
			return Snapshot{}, fmt.Errorf("failed to back up database: %w", err)
		}
	}

	info, err := os.Stat(dest)
	if err != nil {
		return Snapshot{}, err
	}
	logger.Info("Created backup", "path", dest, "bytes", info.Size())
	return Snapshot{Path: dest, TakenAt: taken, Size: info.Size()}, nil
}

func (m *Manager) freePath(t time.Time) (string, error) {
	base := filePrefix + t.Format(stampLayout)
	for i := 0; i <= 100; i++ {
		name := base + fileSuffix
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", base, i, fileSuffix)
		}
		p := filepath.Join(m.dir, name)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p, nil
		}
	}
	return "", errors.New("failed to generate unique backup filename")
}

// List returns snapshots newest first. A missing directory is an empty list.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		taken, ok := parseName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Path:    filepath.Join(m.dir, e.Name()),
			TakenAt: taken,
			Size:    info.Size(),
		})
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].TakenAt.Equal(snaps[j].TakenAt) {
			// counter suffixes sort after the unsuffixed name
			if len(snaps[i].Path) != len(snaps[j].Path) {
				return len(snaps[i].Path) > len(snaps[j].Path)
			}
			return snaps[i].Path > snaps[j].Path
		}
		return snaps[i].TakenAt.After(snaps[j].TakenAt)
	})
	return snaps, nil
}

// parseName accepts lifeos-YYYYMMDD-HHMMSS.db with an optional -N counter.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if len(stamp) > len(stampLayout) {
		stamp = stamp[:len(stampLayout)]
	}
	t, err := time.Parse(stampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Prune removes snapshots beyond the rotation limit.
func (m *Manager) Prune() error {
	if m.keep < 1 {
		return nil
	}
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for _, s := range snaps[min(m.keep, len(snaps)):] {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", s.Name(), err)
		}
		logger.Debug("Removed old backup", "path", s.Path)
	}
	return nil
}

// Find resolves a snapshot by file name or path.
func (m *Manager) Find(ref string) (Snapshot, error) {
	snaps, err := m.List()
	if err != nil {
		return Snapshot{}, err
	}
	for _, s := range snaps {
		if s.Path == ref || s.Name() == ref || s.Name() == ref+fileSuffix {
			return s, nil
		}
	}
	return Snapshot{}, fmt.Errorf("no backup named %q in %s", ref, m.dir)
}

// Restore replaces the database with snap. The current database, if any, is
// snapshotted first and returned. The caller must close open handles.
func (m *Manager) Restore(ctx context.Context, snap Snapshot) (*Snapshot, error) {
	if err := verify(ctx, snap.Path); err != nil {
		return nil, fmt.Errorf("backup %s is corrupted or invalid: %w", snap.Name(), err)
	}

	var previous *Snapshot
	if _, err := os.Stat(m.dbPath); err == nil {
		// taken without rotation so the snapshot being restored survives
		prev, err := m.create(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		previous = &prev
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(snap.Path, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Restored backup", "from", snap.Path, "to", m.dbPath)
	return previous, nil
}

func verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return ping(ctx, db)
}

func ping(ctx context.Context, db *sql.DB) error {
	var n int
	return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
