// Package journal keeps a SQLite history of committed renames, so that an
// item can be traced back through its previous names.
package journal

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/hangar/internal/item"
	"github.com/aidanlsb/hangar/internal/paths"
	"github.com/aidanlsb/hangar/internal/sqlutil"
)

// CurrentVersion is the journal schema version.
const CurrentVersion = 1

// Entry is one committed rename.
type Entry struct {
	ID        int64
	Timestamp time.Time
	// Item is the full name after the rename, Previous the one before.
	Item     string
	Previous string
	OldName  string
	NewName  string
	Kind     string
}

// Journal is the rename history of a workspace.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Path returns the journal database location for the workspace at root.
func Path(root string) string {
	return filepath.Join(root, paths.StateDir, "journal.db")
}

// Open opens or creates the journal of the workspace at root. A nil logger
// discards output.
func Open(root string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	dbPath := Path(root)

	lock, err := acquireLock(filepath.Join(filepath.Dir(dbPath), "journal.lock"))
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db, logger: logger, now: time.Now}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("journal opened", "path", dbPath)
	return j, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS renames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,        -- Unix milliseconds
			item TEXT NOT NULL,         -- Full name after the rename
			previous TEXT NOT NULL,     -- Full name before the rename
			old_name TEXT NOT NULL,
			new_name TEXT NOT NULL,
			kind TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_renames_item ON renames(item);
		CREATE INDEX IF NOT EXISTS idx_renames_ts ON renames(ts);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	var version string
	err := j.db.QueryRow("SELECT value FROM meta WHERE key = 'version'").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		_, err = j.db.Exec("INSERT INTO meta (key, value) VALUES ('version', ?)", strconv.Itoa(CurrentVersion))
		if err != nil {
			return fmt.Errorf("failed to write journal version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read journal version: %w", err)
	default:
		v, convErr := strconv.Atoi(version)
		if convErr != nil || v > CurrentVersion {
			return fmt.Errorf("journal version %q is newer than supported version %d", version, CurrentVersion)
		}
	}
	return nil
}

// Record stores e. A zero timestamp is set to the current time.
func (j *Journal) Record(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = j.now()
	}
	_, err := j.db.Exec(
		`INSERT INTO renames (ts, item, previous, old_name, new_name, kind) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Timestamp.UnixMilli(), e.Item, e.Previous, e.OldName, e.NewName, e.Kind,
	)
	if err != nil {
		return fmt.Errorf("failed to record rename of %s: %w", e.Previous, err)
	}
	return nil
}

// OnRenamed records a committed rename. It makes Journal an item.Listener.
func (j *Journal) OnRenamed(it *item.Item, oldName, newName string) error {
	return j.Record(Entry{
		Item:     it.FullName(),
		Previous: item.FullNameOf(it.Parent(), oldName),
		OldName:  oldName,
		NewName:  newName,
		Kind:     it.Kind().Name,
	})
}

// Recent returns up to limit renames, newest first. A limit <= 0 returns all.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	return j.Since(time.Time{}, limit)
}

// Since returns up to limit renames recorded at or after t, newest first.
// A zero t applies no lower bound.
func (j *Journal) Since(t time.Time, limit int) ([]Entry, error) {
	query := `SELECT id, ts, item, previous, old_name, new_name, kind FROM renames`
	var args []any
	if !t.IsZero() {
		query += " WHERE ts >= ?"
		args = append(args, t.UnixMilli())
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return j.query(query, args...)
}

// Trail follows the renames that led to fullName backwards and returns them
// newest first. Renames of an ancestor are followed too: they change the
// full name the item was recorded under, but are not part of its trail.
func (j *Journal) Trail(fullName string) ([]Entry, error) {
	var out []Entry
	name := paths.NormalizeFullName(fullName)
	before := int64(math.MaxInt64)
	for name != "" {
		placeholders, args := sqlutil.InClauseArgs(selfAndAncestors(name))
		query := `SELECT id, ts, item, previous, old_name, new_name, kind FROM renames
			WHERE item IN (` + placeholders + `) AND id < ? ORDER BY id DESC LIMIT 1`
		entries, err := j.query(query, append(args, before)...)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		e := entries[0]
		before = e.ID
		if e.Item == name {
			out = append(out, e)
			name = e.Previous
			continue
		}
		// An ancestor was renamed; before that, name lived under its old path.
		name = e.Previous + strings.TrimPrefix(name, e.Item)
	}
	return out, nil
}

// selfAndAncestors returns fullName and the full names of its ancestors.
func selfAndAncestors(fullName string) []string {
	segs := paths.SplitFullName(fullName)
	out := make([]string, len(segs))
	for i := range segs {
		out[i] = strings.Join(segs[:i+1], "/")
	}
	return out
}

func (j *Journal) query(query string, args ...any) ([]Entry, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	out, err := sqlutil.ScanRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return out, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var ts int64
	if err := rows.Scan(&e.ID, &ts, &e.Item, &e.Previous, &e.OldName, &e.NewName, &e.Kind); err != nil {
		return e, err
	}
	e.Timestamp = time.UnixMilli(ts)
	return e, nil
}

// Remove deletes the journal database of the workspace at root.
func Remove(root string) error {
	dbPath := Path(root)
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}
