package engine

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// store is the SQLite data layer for the engine's symbol indexes. One
// database holds every indexed configuration, partitioned by config key.
type store struct {
	db *sql.DB
}

// memoryDSN keeps the whole index in process memory. A single pooled
// connection is enforced in newStore so :memory: always refers to the
// same database.
const memoryDSN = ":memory:"

func newStore(path string) (*store, error) {
	if path == "" {
		path = memoryDSN
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	// database/sql pools connections; an in-memory SQLite database is
	// per-connection, so the pool must stay at one.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping index database: %w", err)
	}
	s := &store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS configs (
  id              INTEGER PRIMARY KEY,
  key             TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  config_id       INTEGER NOT NULL REFERENCES configs(id) ON DELETE CASCADE,
  path            TEXT NOT NULL,
  hash            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  name            TEXT NOT NULL,
  kind            TEXT NOT NULL,
  start_line      INTEGER NOT NULL,
  start_col       INTEGER NOT NULL,
  end_line        INTEGER NOT NULL,
  end_col         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS refs (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  name            TEXT NOT NULL,
  target_symbol_id INTEGER REFERENCES symbols(id) ON DELETE SET NULL,
  is_def          BOOLEAN NOT NULL DEFAULT FALSE,
  start_line      INTEGER NOT NULL,
  start_col       INTEGER NOT NULL,
  end_line        INTEGER NOT NULL,
  end_col         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_config ON files(config_id);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_refs_file ON refs(file_id);
CREATE INDEX IF NOT EXISTS idx_refs_name ON refs(name);
`

// ensureConfig returns the row id for key, inserting it if absent.
// The second result reports whether the config already existed.
func (s *store) ensureConfig(key string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM configs WHERE key = ?", key).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("lookup config: %w", err)
	}
	res, err := s.db.Exec("INSERT INTO configs (key) VALUES (?)", key)
	if err != nil {
		return 0, false, fmt.Errorf("insert config: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("config id: %w", err)
	}
	return id, false, nil
}

// deleteConfig drops a configuration and, via cascades, all of its
// files, symbols, and refs.
func (s *store) deleteConfig(key string) error {
	if _, err := s.db.Exec("DELETE FROM configs WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete config: %w", err)
	}
	return nil
}

// deleteAll empties every table.
func (s *store) deleteAll() error {
	if _, err := s.db.Exec("DELETE FROM configs"); err != nil {
		return fmt.Errorf("clear configs: %w", err)
	}
	return nil
}

func (s *store) insertFile(configID int64, path, hash string) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (config_id, path, hash) VALUES (?, ?, ?)",
		configID, path, hash,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	return res.LastInsertId()
}

func (s *store) deleteFile(configID int64, path string) error {
	_, err := s.db.Exec(
		"DELETE FROM files WHERE config_id = ? AND path = ?", configID, path,
	)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// fileHash returns the stored content hash for path in the given config,
// or "" when the file is not indexed.
func (s *store) fileHash(configID int64, path string) (string, error) {
	var hash string
	err := s.db.QueryRow(
		"SELECT hash FROM files WHERE config_id = ? AND path = ?", configID, path,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup file hash: %w", err)
	}
	return hash, nil
}

func (s *store) insertSymbol(fileID int64, d declaration) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO symbols (file_id, name, kind, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fileID, d.Name, d.Kind, d.StartLine, d.StartCol, d.EndLine, d.EndCol,
	)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	return res.LastInsertId()
}

func (s *store) insertRef(fileID int64, r reference, target sql.NullInt64, isDef bool) error {
	_, err := s.db.Exec(
		`INSERT INTO refs (file_id, name, target_symbol_id, is_def, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fileID, r.Name, target, isDef, r.StartLine, r.StartCol, r.EndLine, r.EndCol,
	)
	if err != nil {
		return fmt.Errorf("insert ref: %w", err)
	}
	return nil
}

// useRow is one refs row joined with its resolved declaration, the raw
// material for SymbolUse values.
type useRow struct {
	Path      string
	Name      string
	IsDef     bool
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int

	DeclValid     bool
	DeclPath      string
	DeclStartLine int
	DeclStartCol  int
	DeclEndLine   int
	DeclEndCol    int
	DeclKind      string
}

const useSelect = `
SELECT rf.path, r.name, r.is_def,
       r.start_line, r.start_col, r.end_line, r.end_col,
       s.id IS NOT NULL,
       COALESCE(sf.path, ''), COALESCE(s.start_line, 0), COALESCE(s.start_col, 0),
       COALESCE(s.end_line, 0), COALESCE(s.end_col, 0), COALESCE(s.kind, '')
FROM refs r
JOIN files rf ON rf.id = r.file_id
LEFT JOIN symbols s ON s.id = r.target_symbol_id
LEFT JOIN files sf ON sf.id = s.file_id
`

func (s *store) scanUseRows(rows *sql.Rows) ([]useRow, error) {
	defer rows.Close()
	var out []useRow
	for rows.Next() {
		var u useRow
		if err := rows.Scan(
			&u.Path, &u.Name, &u.IsDef,
			&u.StartLine, &u.StartCol, &u.EndLine, &u.EndCol,
			&u.DeclValid, &u.DeclPath, &u.DeclStartLine, &u.DeclStartCol,
			&u.DeclEndLine, &u.DeclEndCol, &u.DeclKind,
		); err != nil {
			return nil, fmt.Errorf("scan use row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// usesInFile returns every use row in one file of a configuration, in
// source order.
func (s *store) usesInFile(configID int64, path string) ([]useRow, error) {
	rows, err := s.db.Query(
		useSelect+`WHERE rf.config_id = ? AND rf.path = ?
		 ORDER BY r.start_line, r.start_col`,
		configID, path,
	)
	if err != nil {
		return nil, fmt.Errorf("query file uses: %w", err)
	}
	return s.scanUseRows(rows)
}

// usesOfName returns every use row in a configuration whose name
// matches, ordered by file then position.
func (s *store) usesOfName(configID int64, name string) ([]useRow, error) {
	rows, err := s.db.Query(
		useSelect+`WHERE rf.config_id = ? AND r.name = ?
		 ORDER BY rf.path, r.start_line, r.start_col`,
		configID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("query name uses: %w", err)
	}
	return s.scanUseRows(rows)
}

// declsByConfig loads every declaration in a configuration as
// resolution candidates, keyed by name in file order.
func (s *store) declsByConfig(configID int64) (map[string][]declSite, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.name, f.path
		 FROM symbols s JOIN files f ON f.id = s.file_id
		 WHERE f.config_id = ?
		 ORDER BY f.id, s.start_line, s.start_col`,
		configID,
	)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]declSite)
	for rows.Next() {
		var site declSite
		var name string
		if err := rows.Scan(&site.id, &name, &site.path); err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		out[name] = append(out[name], site)
	}
	return out, rows.Err()
}

// declarationsInFile returns declaration rows for one file, in source
// order. Used by the bulk navigation scan.
func (s *store) declarationsInFile(configID int64, path string) ([]useRow, error) {
	rows, err := s.db.Query(
		useSelect+`WHERE rf.config_id = ? AND rf.path = ? AND r.is_def
		 ORDER BY r.start_line, r.start_col`,
		configID, path,
	)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	return s.scanUseRows(rows)
}
