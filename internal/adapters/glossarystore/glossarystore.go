// Package glossarystore is the host-side default ports.GlossaryProvider:
// a sqlite-backed table of source/target term pairs, re-pointable to a
// new on-disk file whenever the config snapshot's glossary path changes.
package glossarystore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/projectmoil/gateway/internal/adapters/db/sqlite"
)

// Store implements ports.GlossaryProvider over a terms(src, trgt,
// updated_at) table. Not safe for concurrent use until SetPath has been
// called at least once.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	repo *sqlite.Repo
	path string
}

// New returns a Store with no backing database; SetPath must be called
// before GetContextPrompt or AddNewTerm will do anything useful.
func New() *Store {
	return &Store{}
}

// SetPath reopens the backing database at path, closing any previous
// handle. A no-op if path is unchanged and already open.
func (s *Store) SetPath(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		return nil
	}
	if path == s.path && s.db != nil {
		return nil
	}

	db, err := sqlite.Init(path)
	if err != nil {
		return err
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	s.db = db
	s.repo = sqlite.NewRepo(db)
	s.path = path
	return nil
}

// GetContextPrompt renders every stored term whose source side appears
// case-insensitively in processedText as a flat "src = trgt" block, or ""
// if none apply (or no database is open yet).
func (s *Store) GetContextPrompt(ctx context.Context, processedText string) (string, error) {
	db, repo := s.handle()
	if db == nil {
		return "", nil
	}

	rows, err := repo.SQ.Select("src", "trgt").From("terms").RunWith(db).QueryContext(ctx)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	lower := strings.ToLower(processedText)
	var lines []string
	for rows.Next() {
		var src, trgt string
		if err := rows.Scan(&src, &trgt); err != nil {
			return "", err
		}
		if strings.Contains(lower, strings.ToLower(src)) {
			lines = append(lines, src+" = "+trgt)
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	return "[Glossary]:\n" + strings.Join(lines, "\n"), nil
}

// AddNewTerm upserts a term pair, overwriting the translation on conflict.
func (s *Store) AddNewTerm(ctx context.Context, src, trgt string) error {
	db, repo := s.handle()
	if db == nil {
		return errors.New("glossarystore: no path configured")
	}

	q := repo.SQ.Insert("terms").
		Columns("src", "trgt", "updated_at").
		Values(src, trgt, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(src) DO UPDATE SET trgt=excluded.trgt, updated_at=excluded.updated_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (s *Store) handle() (*sql.DB, *sqlite.Repo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db, s.repo
}
