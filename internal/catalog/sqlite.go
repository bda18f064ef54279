package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore serves the catalog from the category and law tables.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (creating if needed) the catalog database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS category (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		folder TEXT NOT NULL,
		is_sub_folder INTEGER NOT NULL DEFAULT 0,
		group_id TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS law (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		filename TEXT NOT NULL,
		path TEXT NOT NULL,
		category_id TEXT NOT NULL,
		level TEXT NOT NULL DEFAULT '',
		publish TEXT NOT NULL DEFAULT '',
		expired TEXT NOT NULL DEFAULT '',
		subtitle TEXT NOT NULL DEFAULT '',
		valid_from TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (category_id) REFERENCES category(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_category_group ON category(group_id);
	CREATE INDEX IF NOT EXISTS idx_law_category ON law(category_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const categoryColumns = `id, name, folder, is_sub_folder, group_id, sort_order`

const lawColumns = `id, name, filename, path, category_id, level, publish,
	expired, subtitle, valid_from, sort_order`

func (s *SQLiteStore) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	query := `SELECT ` + categoryColumns + ` FROM category WHERE is_sub_folder = 0 ORDER BY sort_order, rowid`
	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) SubCategories(ctx context.Context, parentID string) ([]Category, error) {
	if err := s.requireCategory(ctx, parentID); err != nil {
		return nil, err
	}

	var out []Category
	query := `
		SELECT ` + categoryColumns + ` FROM category c
		WHERE c.is_sub_folder = 1 AND c.group_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM category d WHERE d.is_sub_folder = 1 AND d.group_id = c.id
		  )
		ORDER BY c.sort_order, c.rowid`
	if err := s.db.SelectContext(ctx, &out, query, parentID); err != nil {
		return nil, fmt.Errorf("select sub-categories of %s: %w", parentID, err)
	}
	return out, nil
}

func (s *SQLiteStore) Laws(ctx context.Context, categoryID string) ([]Law, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	var out []Law
	query := `SELECT ` + lawColumns + ` FROM law WHERE category_id = ? ORDER BY sort_order, rowid`
	if err := s.db.SelectContext(ctx, &out, query, categoryID); err != nil {
		return nil, fmt.Errorf("select laws of %s: %w", categoryID, err)
	}
	return out, nil
}

func (s *SQLiteStore) AllLaws(ctx context.Context, parentID string) ([]Law, error) {
	subs, err := s.SubCategories(ctx, parentID)
	if err != nil {
		return nil, err
	}

	ids := []string{parentID}
	for _, c := range subs {
		ids = append(ids, c.ID)
	}

	query, args, err := sqlx.In(
		`SELECT `+lawColumns+` FROM law WHERE category_id IN (?) ORDER BY sort_order, rowid`, ids)
	if err != nil {
		return nil, fmt.Errorf("build law query: %w", err)
	}

	var out []Law
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select laws under %s: %w", parentID, err)
	}
	return out, nil
}

func (s *SQLiteStore) requireCategory(ctx context.Context, id string) error {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM category WHERE id = ?`, id); err != nil {
		return fmt.Errorf("lookup category %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// SyncResult counts the rows written by Sync.
type SyncResult struct {
	Categories int `json:"categories" yaml:"categories"`
	Laws       int `json:"laws" yaml:"laws"`
}

// Sync replaces the catalog tables with the contents of src in a single
// transaction.
func (s *SQLiteStore) Sync(ctx context.Context, src Store) (SyncResult, error) {
	var res SyncResult

	cats, err := src.Categories(ctx)
	if err != nil {
		return res, fmt.Errorf("list source categories: %w", err)
	}

	all := append([]Category(nil), cats...)
	for _, c := range cats {
		subs, err := src.SubCategories(ctx, c.ID)
		if err != nil {
			return res, fmt.Errorf("list source sub-categories of %s: %w", c.ID, err)
		}
		all = append(all, subs...)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM law`); err != nil {
		return res, fmt.Errorf("clear laws: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM category`); err != nil {
		return res, fmt.Errorf("clear categories: %w", err)
	}

	for _, c := range all {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO category (`+categoryColumns+`)
			VALUES (:id, :name, :folder, :is_sub_folder, :group_id, :sort_order)`, c)
		if err != nil {
			return res, fmt.Errorf("insert category %s: %w", c.ID, err)
		}
		res.Categories++

		laws, err := src.Laws(ctx, c.ID)
		if err != nil {
			return res, fmt.Errorf("list source laws of %s: %w", c.ID, err)
		}
		for _, l := range laws {
			_, err := tx.NamedExecContext(ctx, `
				INSERT OR REPLACE INTO law (`+lawColumns+`)
				VALUES (:id, :name, :filename, :path, :category_id, :level, :publish,
					:expired, :subtitle, :valid_from, :sort_order)`, l)
			if err != nil {
				return res, fmt.Errorf("insert law %s: %w", l.ID, err)
			}
			res.Laws++
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit sync: %w", err)
	}
	return res, nil
}
