package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/starford/storagekit/internal/apperr"
	"github.com/starford/storagekit/internal/models"
)

const selectColumns = `SELECT path, name, kind, file_type, size, checksum, updated_at FROM items`

// Upsert inserts or replaces the row for item.Path.
func (db *DB) Upsert(item models.ItemInfo) error {
	_, err := db.conn.Exec(`
		INSERT INTO items (path, parent, name, kind, file_type, size, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			parent     = excluded.parent,
			name       = excluded.name,
			kind       = excluded.kind,
			file_type  = excluded.file_type,
			size       = excluded.size,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, item.Path, parentOf(item.Path), item.Name, item.Kind, item.FileType, item.Size, item.Checksum, item.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", item.Path, err)
	}
	return nil
}

// Delete removes p and, for folders, every row below it. An empty path
// clears the catalog.
func (db *DB) Delete(p string) error {
	if p == "" {
		if _, err := db.conn.Exec(`DELETE FROM items`); err != nil {
			return fmt.Errorf("catalog: clear: %w", err)
		}
		return nil
	}
	_, err := db.conn.Exec(`DELETE FROM items WHERE path = ? OR path LIKE ? ESCAPE '\'`, p, escapeLike(p)+"/%")
	if err != nil {
		return fmt.Errorf("catalog: delete %s: %w", p, err)
	}
	return nil
}

// Get returns the row for p, or apperr.ErrNotFound.
func (db *DB) Get(p string) (*models.ItemInfo, error) {
	row := db.conn.QueryRow(selectColumns+` WHERE path = ?`, p)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", p, err)
	}
	return &item, nil
}

// List returns the direct children of dir, folders first, then by name.
func (db *DB) List(dir string) ([]models.ItemInfo, error) {
	rows, err := db.conn.Query(selectColumns+` WHERE parent = ? ORDER BY kind DESC, name`, dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: list %s: %w", dir, err)
	}
	return collect(rows)
}

// Search matches query against item names and paths.
func (db *DB) Search(query string, limit int) ([]models.ItemInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + escapeLike(query) + "%"
	rows, err := db.conn.Query(selectColumns+`
		WHERE name LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\'
		ORDER BY (name LIKE ? ESCAPE '\') DESC, path
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	return collect(rows)
}

// AllChecksums returns the checksum of every catalogued path. Folders map
// to an empty string.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM items`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (models.ItemInfo, error) {
	var it models.ItemInfo
	err := s.Scan(&it.Path, &it.Name, &it.Kind, &it.FileType, &it.Size, &it.Checksum, &it.UpdatedAt)
	return it, err
}

func collect(rows *sql.Rows) ([]models.ItemInfo, error) {
	defer rows.Close()
	out := []models.ItemInfo{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// parentOf returns the slash-separated parent of p; top-level items have "".
func parentOf(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
