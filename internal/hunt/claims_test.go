package hunt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/hostelhunt/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaimFixture(t *testing.T) (*memStore, *Service) {
	t.Helper()
	store := newMemStore()
	store.addParticipant(models.Participant{UserID: alice.ID, StudentID: 1002345})
	store.addParticipant(models.Participant{UserID: 2002, StudentID: 1002346})
	store.addToken("red42", "red", "a", "b", "c")
	store.addToken("blue7", "blue")
	return store, newTestService(store)
}

func TestClaim_Arity(t *testing.T) {
	_, svc := newClaimFixture(t)
	ctx := context.Background()

	res, err := svc.Claim(ctx, alice.ID, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, MsgClaimMissing, res.Reply)
	assert.Empty(t, res.Hash)

	res, err = svc.Claim(ctx, alice.ID, []string{"red42", "blue7"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, MsgClaimTooMany, res.Reply)
	assert.Empty(t, res.Hash)
}

func TestClaim_EndToEnd(t *testing.T) {
	store, svc := newClaimFixture(t)
	ctx := context.Background()

	res, err := svc.Claim(ctx, alice.ID, []string{"red42"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, MsgClaimSuccess, res.Reply)
	assert.NotEmpty(t, res.Hash)
	assert.Contains(t, res.Receipt(), res.Hash)

	tok := store.token("red42")
	assert.True(t, tok.Claimed)
	assert.Equal(t, "1001", tok.Claimant)
	assert.Equal(t, res.Hash, tok.Hash)

	res, err = svc.Claim(ctx, alice.ID, []string{"red42"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, MsgClaimTaken, res.Reply)
	assert.Empty(t, res.Hash)
	assert.Empty(t, res.Receipt())
}

func TestClaim_UnknownToken(t *testing.T) {
	_, svc := newClaimFixture(t)

	res, err := svc.Claim(context.Background(), alice.ID, []string{"green99"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, MsgClaimInvalidToken, res.Reply)
	assert.NotEqual(t, MsgClaimTaken, res.Reply)
}

func TestClaim_TokenProvisionedAfterCatalogLoad(t *testing.T) {
	store, svc := newClaimFixture(t)
	ctx := context.Background()

	_, err := svc.Claim(ctx, alice.ID, []string{"blue7"}, time.Now())
	require.NoError(t, err)

	store.addToken("green1", "green")

	res, err := svc.Claim(ctx, alice.ID, []string{"green1"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, MsgClaimSuccess, res.Reply)
}

func TestClaim_NonParticipantIsNoop(t *testing.T) {
	store, svc := newClaimFixture(t)

	res, err := svc.Claim(context.Background(), 4242, []string{"red42"}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, res.Reply)
	assert.Empty(t, res.Hash)
	assert.False(t, store.token("red42").Claimed)
}

func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	store, svc := newClaimFixture(t)
	for id := int64(3000); id < 3020; id++ {
		store.addParticipant(models.Participant{UserID: id, StudentID: int(id)})
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []ClaimResult
	)
	for id := int64(3000); id < 3020; id++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			res, err := svc.Claim(context.Background(), userID, []string{"red42"}, time.Now())
			assert.NoError(t, err)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	wins := 0
	for _, res := range results {
		switch res.Reply {
		case MsgClaimSuccess:
			wins++
		case MsgClaimTaken:
		default:
			t.Errorf("unexpected reply %q", res.Reply)
		}
	}
	assert.Equal(t, 1, wins)
	assert.True(t, store.token("red42").Claimed)
}

func TestClaim_ReceiptFailureLeavesTokenUnclaimed(t *testing.T) {
	store, _ := newClaimFixture(t)
	svc := NewService(store, NewCatalog(store, time.Minute), &fakeReceipts{err: errStoreDown}, testConfig)

	res, err := svc.Claim(context.Background(), alice.ID, []string{"red42"}, time.Now())
	assert.Error(t, err)
	assert.Equal(t, MsgGenericFailure, res.Reply)
	assert.False(t, store.token("red42").Claimed)
}

func TestVerify(t *testing.T) {
	_, svc := newClaimFixture(t)
	ctx := context.Background()

	res, err := svc.Claim(ctx, alice.ID, []string{"red42"}, time.Now())
	require.NoError(t, err)

	reply, err := svc.Verify(ctx, []string{res.Hash})
	require.NoError(t, err)
	assert.Equal(t, MsgHashFound, reply)

	reply, err = svc.Verify(ctx, []string{"$argon2id$forged"})
	require.NoError(t, err)
	assert.Equal(t, MsgHashMissing, reply)

	reply, err = svc.Verify(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, MsgHashMissingArg, reply)

	reply, err = svc.Verify(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, MsgHashTooMany, reply)
}

func TestClaim_StoresReceiptTime(t *testing.T) {
	store, svc := newClaimFixture(t)
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	res, err := svc.Claim(context.Background(), alice.ID, []string{"red42"}, now)
	require.NoError(t, err)
	require.Equal(t, MsgClaimSuccess, res.Reply)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, now, store.claimedAt["red42"])
}
