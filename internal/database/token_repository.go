package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/example/hostelhunt/internal/apperror"
	"github.com/example/hostelhunt/pkg/models"
	"github.com/jmoiron/sqlx"
)

// TokenRepository handles database operations for tokens
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new repository instance
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = "code, category, claimed, claimant, hash, first_hint, second_hint, third_hint"

// GetByCode returns a token by its code
func (r *TokenRepository) GetByCode(ctx context.Context, code string) (*models.Token, error) {
	var token models.Token
	query := r.db.Rebind("SELECT " + tokenColumns + " FROM tokens WHERE code = ?")

	err := r.db.GetContext(ctx, &token, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("token", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// Upsert provisions a token or refreshes its category and hints. Claim state
// of an existing token is left alone.
func (r *TokenRepository) Upsert(ctx context.Context, token *models.Token) (created bool, err error) {
	created, err = r.isNew(ctx, token.Code)
	if err != nil {
		return false, err
	}

	query := r.db.Rebind(`
		INSERT INTO tokens (code, category, first_hint, second_hint, third_hint)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			category = excluded.category,
			first_hint = excluded.first_hint,
			second_hint = excluded.second_hint,
			third_hint = excluded.third_hint
	`)
	_, err = r.db.ExecContext(ctx, query,
		token.Code,
		token.Category,
		token.FirstHint,
		token.SecondHint,
		token.ThirdHint,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert token: %w", err)
	}
	return created, nil
}

// UpsertCode provisions a bare code or moves it to category, keeping any
// hints loaded earlier.
func (r *TokenRepository) UpsertCode(ctx context.Context, code, category string) (created bool, err error) {
	created, err = r.isNew(ctx, code)
	if err != nil {
		return false, err
	}

	query := r.db.Rebind(`
		INSERT INTO tokens (code, category)
		VALUES (?, ?)
		ON CONFLICT (code) DO UPDATE SET category = excluded.category
	`)
	if _, err := r.db.ExecContext(ctx, query, code, category); err != nil {
		return false, fmt.Errorf("failed to upsert token code: %w", err)
	}
	return created, nil
}

func (r *TokenRepository) isNew(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return true, nil
	case err != nil:
		return false, err
	}
	return false, nil
}

// ListCodes returns every provisioned token code
func (r *TokenRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, "SELECT code FROM tokens ORDER BY code"); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return codes, nil
}

// ListUnclaimedCodes returns the codes that can still be claimed
func (r *TokenRepository) ListUnclaimedCodes(ctx context.Context) ([]string, error) {
	var codes []string
	query := r.db.Rebind("SELECT code FROM tokens WHERE claimed = ? ORDER BY code")
	if err := r.db.SelectContext(ctx, &codes, query, false); err != nil {
		return nil, fmt.Errorf("failed to list unclaimed tokens: %w", err)
	}
	return codes, nil
}

// Claim marks the token as claimed by userID. The update only applies while
// the token is still unclaimed, so of several concurrent claims one wins.
func (r *TokenRepository) Claim(ctx context.Context, code string, userID int64, hash string, claimedAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE tokens
		SET claimed = ?, claimant = ?, hash = ?, claimed_at = ?
		WHERE code = ? AND claimed = ?
	`)

	result, err := r.db.ExecContext(ctx, query, true, strconv.FormatInt(userID, 10), hash, claimedAt.Unix(), code, false)
	if err != nil {
		return fmt.Errorf("failed to claim token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	if _, err := r.GetByCode(ctx, code); err != nil {
		return err
	}
	return apperror.Conflict("token", code)
}

// HintPool returns every non-empty hint of every unclaimed token
func (r *TokenRepository) HintPool(ctx context.Context) ([]string, error) {
	var rows []struct {
		FirstHint  string `db:"first_hint"`
		SecondHint string `db:"second_hint"`
		ThirdHint  string `db:"third_hint"`
	}
	query := r.db.Rebind("SELECT first_hint, second_hint, third_hint FROM tokens WHERE claimed = ?")
	if err := r.db.SelectContext(ctx, &rows, query, false); err != nil {
		return nil, fmt.Errorf("failed to collect hints: %w", err)
	}

	pool := make([]string, 0, len(rows)*3)
	for _, row := range rows {
		t := models.Token{FirstHint: row.FirstHint, SecondHint: row.SecondHint, ThirdHint: row.ThirdHint}
		pool = append(pool, t.Hints()...)
	}
	return pool, nil
}

// ListClaimedHashes returns the verification hash of every claimed token
func (r *TokenRepository) ListClaimedHashes(ctx context.Context) ([]string, error) {
	var hashes []string
	query := r.db.Rebind("SELECT hash FROM tokens WHERE claimed = ?")
	if err := r.db.SelectContext(ctx, &hashes, query, true); err != nil {
		return nil, fmt.Errorf("failed to list hashes: %w", err)
	}
	return hashes, nil
}

// TokenStats summarises the progress of the hunt
type TokenStats struct {
	Total   int `db:"total"`
	Claimed int `db:"claimed"`
}

// Stats counts all and claimed tokens
func (r *TokenRepository) Stats(ctx context.Context) (TokenStats, error) {
	var stats TokenStats
	query := r.db.Rebind("SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN claimed = ? THEN 1 ELSE 0 END), 0) AS claimed FROM tokens")
	if err := r.db.GetContext(ctx, &stats, query, true); err != nil {
		return TokenStats{}, fmt.Errorf("failed to count tokens: %w", err)
	}
	return stats, nil
}
