package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/example/hostelhunt/internal/apperror"
	"github.com/example/hostelhunt/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_UpsertCreatesThenUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Tokens.Upsert(ctx, &models.Token{Code: "red42", Category: "red", FirstHint: "a"})
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, s.Tokens.Claim(ctx, "red42", 1001, "hash", time.Now()))

	created, err = s.Tokens.Upsert(ctx, &models.Token{Code: "red42", Category: "red", FirstHint: "b", SecondHint: "c"})
	require.NoError(t, err)
	assert.False(t, created)

	tok, err := s.Tokens.GetByCode(ctx, "red42")
	require.NoError(t, err)
	assert.Equal(t, "b", tok.FirstHint)
	assert.Equal(t, "c", tok.SecondHint)
	assert.True(t, tok.Claimed)
	assert.Equal(t, "1001", tok.Claimant)
	assert.Equal(t, "hash", tok.Hash)
}

func TestToken_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Tokens.GetByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestToken_ClaimOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedToken(t, s, models.Token{Code: "red42", Category: "red"})

	require.NoError(t, s.Tokens.Claim(ctx, "red42", 1001, "first", time.Now()))

	err := s.Tokens.Claim(ctx, "red42", 2002, "second", time.Now())
	assert.ErrorIs(t, err, apperror.ErrConflict)

	tok, err := s.Tokens.GetByCode(ctx, "red42")
	require.NoError(t, err)
	assert.Equal(t, "1001", tok.Claimant)
	assert.Equal(t, "first", tok.Hash)

	err = s.Tokens.Claim(ctx, "nope", 1001, "x", time.Now())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestToken_ConcurrentClaimsSingleWinner(t *testing.T) {
	s := newTestStore(t)
	seedToken(t, s, models.Token{Code: "red42", Category: "red"})

	const claimers = 16
	errs := make([]error, claimers)
	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Tokens.Claim(context.Background(), "red42", int64(1000+i), "hash", time.Now())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestToken_ListsAndPool(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedToken(t, s, models.Token{Code: "red42", Category: "red", FirstHint: "r1", SecondHint: "r2", ThirdHint: "r3"})
	seedToken(t, s, models.Token{Code: "blue7", Category: "blue", FirstHint: "b1"})
	seedToken(t, s, models.Token{Code: "green1", Category: "green"})
	require.NoError(t, s.Tokens.Claim(ctx, "blue7", 1001, "h-blue", time.Now()))

	codes, err := s.Tokens.ListCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"blue7", "green1", "red42"}, codes)

	unclaimed, err := s.Tokens.ListUnclaimedCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"green1", "red42"}, unclaimed)

	pool, err := s.Tokens.HintPool(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, pool)

	hashes, err := s.Tokens.ListClaimedHashes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"h-blue"}, hashes)

	stats, err := s.Tokens.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, TokenStats{Total: 3, Claimed: 1}, stats)
}

func TestToken_StatsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Tokens.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TokenStats{}, stats)
}

func TestToken_ClaimStoresClaimTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedToken(t, s, models.Token{Code: "red42", Category: "red"})

	claimedAt := time.Date(2024, 3, 1, 12, 30, 15, 0, time.UTC)
	require.NoError(t, s.Tokens.Claim(ctx, "red42", 1001, "hash", claimedAt))

	var stored sql.NullInt64
	require.NoError(t, s.Tokens.db.GetContext(ctx, &stored, "SELECT claimed_at FROM tokens WHERE code = ?", "red42"))
	require.True(t, stored.Valid)
	assert.Equal(t, claimedAt.Unix(), stored.Int64)
}

func TestToken_UpsertCodeKeepsHints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedToken(t, s, models.Token{Code: "red42", Category: "red", FirstHint: "a", SecondHint: "b"})

	created, err := s.Tokens.UpsertCode(ctx, "red42", "blue")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = s.Tokens.UpsertCode(ctx, "red43", "red")
	require.NoError(t, err)
	assert.True(t, created)

	tok, err := s.Tokens.GetByCode(ctx, "red42")
	require.NoError(t, err)
	assert.Equal(t, "blue", tok.Category)
	assert.Equal(t, []string{"a", "b"}, tok.Hints())
}
