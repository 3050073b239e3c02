// Package sqlite persists dashboard sessions in the same SQLite file as the
// saga log, one row per session id.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    token       TEXT NOT NULL,
    user_json   TEXT,
    updated_at  TEXT NOT NULL
);
`

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New applies the schema on db, typically the handle returned by the saga
// log's OpenDB.
func New(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply session schema: %w", err)
	}
	return &Repository{db: db, now: time.Now}, nil
}

// For returns the persister of the session with id.
func (r *Repository) For(id string) *Persister {
	return &Persister{repo: r, id: id}
}

// Persister reads and writes the row of one session.
type Persister struct {
	repo *Repository
	id   string
}

func (p *Persister) Save(ctx context.Context, s session.Saved) error {
	var userJSON any
	if s.User != nil {
		b, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("sqlite: encode session user: %w", err)
		}
		userJSON = string(b)
	}

	const q = `
		INSERT INTO sessions (id, token, user_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			updated_at = excluded.updated_at`

	updated := p.repo.now().UTC().Format(time.RFC3339Nano)
	if _, err := p.repo.db.ExecContext(ctx, q, p.id, s.Token, userJSON, updated); err != nil {
		return fmt.Errorf("sqlite: save session: %w", err)
	}
	return nil
}

func (p *Persister) Load(ctx context.Context) (*session.Saved, error) {
	var (
		token    string
		userJSON sql.NullString
	)
	err := p.repo.db.QueryRowContext(ctx, `SELECT token, user_json FROM sessions WHERE id = ?`, p.id).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load session: %w", err)
	}

	saved := &session.Saved{Token: token}
	if userJSON.Valid && userJSON.String != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(userJSON.String), &u); err != nil {
			return nil, fmt.Errorf("sqlite: decode session user: %w", err)
		}
		saved.User = &u
	}
	return saved, nil
}

func (p *Persister) Clear(ctx context.Context) error {
	if _, err := p.repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, p.id); err != nil {
		return fmt.Errorf("sqlite: clear session: %w", err)
	}
	return nil
}
