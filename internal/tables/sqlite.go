package tables

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// The SQLite layout mirrors the spreadsheet columns the tables were
// originally maintained in
var schema = []string{
	`CREATE TABLE IF NOT EXISTS kanji (
		character TEXT PRIMARY KEY,
		strokes   INTEGER NOT NULL,
		element   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS score_81 (
		score       INTEGER PRIMARY KEY,
		luck        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sancai (
		pattern     TEXT PRIMARY KEY,
		luck        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS combinations (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		surname_strokes INTEGER NOT NULL,
		n1_strokes      INTEGER NOT NULL,
		n2_strokes      INTEGER NOT NULL
	)`,
}

// LoadSQLite reads a dataset from a SQLite database
func LoadSQLite(path string) (*Tables, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	kanji, err := queryRows(db, `SELECT character, strokes, element FROM kanji`, func(rows *sql.Rows) (KanjiEntry, error) {
		var k KanjiEntry
		err := rows.Scan(&k.Character, &k.Strokes, &k.Element)
		return k, err
	})
	if err != nil {
		return nil, fmt.Errorf("load kanji: %w", err)
	}

	luck, err := queryRows(db, `SELECT score, luck, description FROM score_81 ORDER BY score`, func(rows *sql.Rows) (LuckEntry, error) {
		var l LuckEntry
		err := rows.Scan(&l.Score, &l.Luck, &l.Desc)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("load score_81: %w", err)
	}

	sancai, err := queryRows(db, `SELECT pattern, luck, description FROM sancai`, func(rows *sql.Rows) (SancaiEntry, error) {
		var s SancaiEntry
		err := rows.Scan(&s.Pattern, &s.Luck, &s.Desc)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("load sancai: %w", err)
	}

	combos, err := queryRows(db, `SELECT surname_strokes, n1_strokes, n2_strokes FROM combinations ORDER BY id`, func(rows *sql.Rows) (ComboEntry, error) {
		var c ComboEntry
		err := rows.Scan(&c.SurnameStrokes, &c.N1Strokes, &c.N2Strokes)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("load combinations: %w", err)
	}

	return New(path, kanji, luck, sancai, combos)
}

func queryRows[T any](db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SaveSQLite writes t into a SQLite database, replacing existing rows
func SaveSQLite(t *Tables, path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"kanji", "score_81", "sancai", "combinations"} {
		if _, err = tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	kanji, luck, sancai, combos := t.Rows()
	for _, k := range kanji {
		if _, err = tx.Exec(`INSERT INTO kanji (character, strokes, element) VALUES (?, ?, ?)`,
			k.Character, k.Strokes, string(k.Element)); err != nil {
			return fmt.Errorf("insert kanji %s: %w", k.Character, err)
		}
	}
	for _, l := range luck {
		if _, err = tx.Exec(`INSERT INTO score_81 (score, luck, description) VALUES (?, ?, ?)`,
			l.Score, l.Luck, l.Desc); err != nil {
			return fmt.Errorf("insert score %d: %w", l.Score, err)
		}
	}
	for _, s := range sancai {
		if _, err = tx.Exec(`INSERT INTO sancai (pattern, luck, description) VALUES (?, ?, ?)`,
			s.Pattern, s.Luck, s.Desc); err != nil {
			return fmt.Errorf("insert sancai %s: %w", s.Pattern, err)
		}
	}
	for _, c := range combos {
		if _, err = tx.Exec(`INSERT INTO combinations (surname_strokes, n1_strokes, n2_strokes) VALUES (?, ?, ?)`,
			c.SurnameStrokes, c.N1Strokes, c.N2Strokes); err != nil {
			return fmt.Errorf("insert combination: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
