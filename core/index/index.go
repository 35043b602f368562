// Package index maintains a SQLite search index over the pages of a
// notebook. Each page row carries a BLAKE3 fingerprint of the source
// text; updating a page whose fingerprint is unchanged skips parsing
// and extraction entirely.
package index

import (
	"database/sql"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/ggfazio/zim-desktop-wiki/core/errors"
	"github.com/ggfazio/zim-desktop-wiki/core/sqlite"
	"github.com/ggfazio/zim-desktop-wiki/core/tree"
	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
)

// schema is applied statement by statement on open. Child tables are
// cleaned up explicitly, so the references stay documentation.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		fingerprint TEXT NOT NULL,
		mtime INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS headings (
		page_id INTEGER NOT NULL REFERENCES pages(id),
		level INTEGER NOT NULL,
		text TEXT NOT NULL,
		anchor TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		source_id INTEGER NOT NULL REFERENCES pages(id),
		href TEXT NOT NULL,
		category TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		page_id INTEGER NOT NULL REFERENCES pages(id),
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS links_href ON links(href)`,
	`CREATE INDEX IF NOT EXISTS tags_name ON tags(name)`,
}

// Index is a page index stored in a SQLite database.
type Index struct {
	db *sql.DB
}

// Open opens or creates the index database at path.
func Open(path string) (*Index, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIndex("open", "", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.NewIndex("open", "", err)
		}
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Fingerprint returns the content fingerprint stored for a page, the
// BLAKE3 sum of its source text in hex.
func Fingerprint(source string) string {
	sum := blake3.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Page is one row of the page table.
type Page struct {
	Name        string
	Title       string
	Fingerprint string
	MTime       int64
}

// Update refreshes the index entry for a page. parse is only invoked
// when the fingerprint of source differs from the stored one; the
// return reports whether an extraction ran. mtime is the source
// modification time in Unix seconds.
func (ix *Index) Update(name, source string, mtime int64, parse func() (*tree.Tree, error)) (bool, error) {
	fp := Fingerprint(source)

	var id int64
	var stored string
	err := ix.db.QueryRow(`SELECT id, fingerprint FROM pages WHERE name = ?`, name).Scan(&id, &stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = 0
	case err != nil:
		return false, errors.NewIndex("update", name, err)
	case stored == fp:
		return false, nil
	}

	t, err := parse()
	if err != nil {
		return false, errors.NewIndex("update", name, err)
	}
	data, err := extract(t)
	if err != nil {
		return false, errors.NewIndex("update", name, err)
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return false, errors.NewIndex("update", name, err)
	}
	defer tx.Rollback()

	if id == 0 {
		res, err := tx.Exec(`INSERT INTO pages (name, title, fingerprint, mtime) VALUES (?, ?, ?, ?)`,
			name, data.title, fp, mtime)
		if err != nil {
			return false, errors.NewIndex("update", name, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return false, errors.NewIndex("update", name, err)
		}
	} else {
		if _, err := tx.Exec(`UPDATE pages SET title = ?, fingerprint = ?, mtime = ? WHERE id = ?`,
			data.title, fp, mtime, id); err != nil {
			return false, errors.NewIndex("update", name, err)
		}
		if err := clearPage(tx, id); err != nil {
			return false, errors.NewIndex("update", name, err)
		}
	}

	for _, h := range data.headings {
		if _, err := tx.Exec(`INSERT INTO headings (page_id, level, text, anchor) VALUES (?, ?, ?, ?)`,
			id, h.Level, h.Text, h.Anchor); err != nil {
			return false, errors.NewIndex("update", name, err)
		}
	}
	for _, l := range data.links {
		if _, err := tx.Exec(`INSERT INTO links (source_id, href, category) VALUES (?, ?, ?)`,
			id, l.Href, l.Category); err != nil {
			return false, errors.NewIndex("update", name, err)
		}
	}
	for _, tag := range data.tags {
		if _, err := tx.Exec(`INSERT INTO tags (page_id, name) VALUES (?, ?)`, id, tag); err != nil {
			return false, errors.NewIndex("update", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errors.NewIndex("update", name, err)
	}
	logging.PageIndexed(name, len(data.headings), len(data.links), len(data.tags))
	return true, nil
}

// Remove drops a page and its extracted rows. Removing a page that is
// not indexed is not an error.
func (ix *Index) Remove(name string) error {
	var id int64
	err := ix.db.QueryRow(`SELECT id FROM pages WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return errors.NewIndex("remove", name, err)
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return errors.NewIndex("remove", name, err)
	}
	defer tx.Rollback()

	if err := clearPage(tx, id); err != nil {
		return errors.NewIndex("remove", name, err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE id = ?`, id); err != nil {
		return errors.NewIndex("remove", name, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewIndex("remove", name, err)
	}
	return nil
}

func clearPage(tx *sql.Tx, id int64) error {
	for _, stmt := range []string{
		`DELETE FROM headings WHERE page_id = ?`,
		`DELETE FROM links WHERE source_id = ?`,
		`DELETE FROM tags WHERE page_id = ?`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the page row stored under name.
func (ix *Index) Lookup(name string) (*Page, error) {
	p := Page{Name: name}
	err := ix.db.QueryRow(`SELECT title, fingerprint, mtime FROM pages WHERE name = ?`, name).
		Scan(&p.Title, &p.Fingerprint, &p.MTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("page", name)
	}
	if err != nil {
		return nil, errors.NewIndex("query", name, err)
	}
	return &p, nil
}

// List returns all indexed pages ordered by name.
func (ix *Index) List() ([]Page, error) {
	return ix.pageQuery(`SELECT name, title, fingerprint, mtime FROM pages ORDER BY name`)
}

// Backlinks returns the names of the pages linking to target, sorted
// and deduplicated.
func (ix *Index) Backlinks(target string) ([]string, error) {
	rows, err := ix.db.Query(`SELECT DISTINCT p.name FROM links l
		JOIN pages p ON p.id = l.source_id
		WHERE l.href = ? ORDER BY p.name`, target)
	if err != nil {
		return nil, errors.NewIndex("query", target, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewIndex("query", target, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// PagesByTag returns the pages carrying the given tag, ordered by
// name.
func (ix *Index) PagesByTag(tag string) ([]Page, error) {
	return ix.pageQuery(`SELECT DISTINCT p.name, p.title, p.fingerprint, p.mtime
		FROM pages p JOIN tags t ON t.page_id = p.id
		WHERE t.name = ? ORDER BY p.name`, tag)
}

// Search returns the pages whose title or any heading contains the
// query, matched case insensitively, ordered by name.
func (ix *Index) Search(query string) ([]Page, error) {
	pattern := "%" + query + "%"
	return ix.pageQuery(`SELECT DISTINCT p.name, p.title, p.fingerprint, p.mtime
		FROM pages p LEFT JOIN headings h ON h.page_id = p.id
		WHERE p.title LIKE ? OR h.text LIKE ? ORDER BY p.name`, pattern, pattern)
}

// Headings returns the headings of a page in document order.
func (ix *Index) Headings(name string) ([]Heading, error) {
	rows, err := ix.db.Query(`SELECT h.level, h.text, h.anchor FROM headings h
		JOIN pages p ON p.id = h.page_id
		WHERE p.name = ? ORDER BY h.rowid`, name)
	if err != nil {
		return nil, errors.NewIndex("query", name, err)
	}
	defer rows.Close()

	var headings []Heading
	for rows.Next() {
		var h Heading
		if err := rows.Scan(&h.Level, &h.Text, &h.Anchor); err != nil {
			return nil, errors.NewIndex("query", name, err)
		}
		headings = append(headings, h)
	}
	return headings, rows.Err()
}

func (ix *Index) pageQuery(query string, args ...any) ([]Page, error) {
	rows, err := ix.db.Query(query, args...)
	if err != nil {
		return nil, errors.NewIndex("query", "", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.Name, &p.Title, &p.Fingerprint, &p.MTime); err != nil {
			return nil, errors.NewIndex("query", "", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
