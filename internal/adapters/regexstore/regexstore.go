// Package regexstore is the host-side default ports.RegexProvider: a
// sqlite-backed table of ordered pre/post substitution rules.
package regexstore

import (
	"context"
	"database/sql"
	"regexp"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"github.com/projectmoil/gateway/internal/adapters/db/sqlite"
)

// Store implements ports.RegexProvider over a rules(pattern, replacement,
// stage, position) table. Unlike the glossary store, the core's
// RegexProvider contract has no path-change hook — the database opened by
// Open is kept for the process lifetime, and its rules are re-read from the
// table on every ProcessPre/ProcessPost call.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	repo *sqlite.Repo
}

// New returns a Store with no backing database; Open must be called
// before ProcessPre/ProcessPost will do anything beyond pass text through
// unchanged.
func New() *Store {
	return &Store{}
}

// Open points the store at the sqlite file holding the rules table. Hosts
// typically share the glossary database file here, since the config
// snapshot carries only one persistence path.
func (s *Store) Open(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := sqlite.Init(path)
	if err != nil {
		return err
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	s.db = db
	s.repo = sqlite.NewRepo(db)
	return nil
}

// ProcessPre applies every "pre" stage rule, in position order.
func (s *Store) ProcessPre(ctx context.Context, text string) (string, error) {
	return s.apply(ctx, "pre", text)
}

// ProcessPost applies every "post" stage rule, in position order.
func (s *Store) ProcessPost(ctx context.Context, text string) (string, error) {
	return s.apply(ctx, "post", text)
}

func (s *Store) apply(ctx context.Context, stage, text string) (string, error) {
	db, repo := s.handle()
	if db == nil {
		return text, nil
	}

	rows, err := repo.SQ.Select("pattern", "replacement").
		From("rules").
		Where(sq.Eq{"stage": stage}).
		OrderBy("position ASC").
		RunWith(db).
		QueryContext(ctx)
	if err != nil {
		return text, err
	}
	defer rows.Close()

	result := text
	for rows.Next() {
		var pattern, replacement string
		if err := rows.Scan(&pattern, &replacement); err != nil {
			return text, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			// A malformed user-authored rule shouldn't take down the
			// whole pipeline; skip it.
			continue
		}
		result = re.ReplaceAllString(result, replacement)
	}
	if err := rows.Err(); err != nil {
		return text, err
	}
	return result, nil
}

func (s *Store) handle() (*sql.DB, *sqlite.Repo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db, s.repo
}
