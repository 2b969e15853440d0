package hunt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/hostelhunt/internal/apperror"
	"github.com/example/hostelhunt/pkg/models"
)

// memStore is an in-memory Store. The conditional writes hold the mutex for
// the whole check-and-set, like the SQL store's conditional UPDATE.
type memStore struct {
	mu           sync.Mutex
	participants map[int64]*models.Participant
	tokens       map[string]*models.Token
	claimedAt    map[string]time.Time

	// set to a non-nil error to simulate a database failure
	failErr error
}

func newMemStore() *memStore {
	return &memStore{
		participants: make(map[int64]*models.Participant),
		tokens:       make(map[string]*models.Token),
		claimedAt:    make(map[string]time.Time),
	}
}

func (m *memStore) addToken(code, category string, hints ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &models.Token{Code: code, Category: category}
	slots := []*string{&t.FirstHint, &t.SecondHint, &t.ThirdHint}
	for i, h := range hints {
		*slots[i] = h
	}
	m.tokens[code] = t
}

func (m *memStore) addParticipant(p models.Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[p.UserID] = &p
}

func (m *memStore) participant(userID int64) *models.Participant {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[userID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (m *memStore) token(code string) models.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.tokens[code]
}

func (m *memStore) ListTokenCodes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	codes := make([]string, 0, len(m.tokens))
	for code := range m.tokens {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func (m *memStore) ListUnclaimedTokenCodes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var codes []string
	for code, t := range m.tokens {
		if !t.Claimed {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

func (m *memStore) GetParticipant(_ context.Context, userID int64) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	p, ok := m.participants[userID]
	if !ok {
		return nil, apperror.NotFound("participant", strconv.FormatInt(userID, 10))
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpsertParticipant(_ context.Context, p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if existing, ok := m.participants[p.UserID]; ok {
		existing.Name = p.Name
		return nil
	}
	m.participants[p.UserID] = &models.Participant{UserID: p.UserID, Name: p.Name}
	return nil
}

func (m *memStore) SetStudentID(_ context.Context, userID int64, studentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	p, ok := m.participants[userID]
	if !ok {
		return apperror.NotFound("participant", strconv.FormatInt(userID, 10))
	}
	for _, other := range m.participants {
		if other.StudentID == studentID {
			return apperror.Conflict("student", strconv.Itoa(studentID))
		}
	}
	if p.StudentID != 0 {
		return apperror.Conflict("participant", strconv.FormatInt(userID, 10))
	}
	p.StudentID = studentID
	return nil
}

func (m *memStore) SetLastHintTime(_ context.Context, userID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	p, ok := m.participants[userID]
	if !ok {
		return apperror.NotFound("participant", strconv.FormatInt(userID, 10))
	}
	t := time.Unix(at.Unix(), 0)
	p.LastHint = &t
	return nil
}

func (m *memStore) ListStudentIDs(_ context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var ids []int
	for _, p := range m.participants {
		ids = append(ids, p.StudentID)
	}
	return ids, nil
}

func (m *memStore) ClaimToken(_ context.Context, code string, userID int64, hash string, claimedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	t, ok := m.tokens[code]
	if !ok || t.Claimed {
		return apperror.Conflict("token", code)
	}
	t.Claimed = true
	t.Claimant = strconv.FormatInt(userID, 10)
	t.Hash = hash
	m.claimedAt[code] = claimedAt
	return nil
}

func (m *memStore) HintPool(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var pool []string
	for _, t := range m.tokens {
		if !t.Claimed {
			pool = append(pool, t.Hints()...)
		}
	}
	return pool, nil
}

func (m *memStore) ListClaimedHashes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var hashes []string
	for _, t := range m.tokens {
		if t.Claimed {
			hashes = append(hashes, t.Hash)
		}
	}
	return hashes, nil
}

func (m *memStore) ListParticipantIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var ids []int64
	for id := range m.participants {
		ids = append(ids, id)
	}
	return ids, nil
}

// fakeReceipts hands out unique, predictable hashes.
type fakeReceipts struct {
	n   atomic.Int64
	err error
}

func (f *fakeReceipts) Issue(code string, userID int64, _ time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("$fake$%s$%d$%d", code, userID, f.n.Add(1)), nil
}

var errStoreDown = errors.New("store unavailable")

var testConfig = Config{
	AuthToken:    "ABC123",
	StudentIDMin: 1000000,
	StudentIDMax: 1006000,
	HintInterval: time.Hour,
	AdminIDs:     []int64{900},
	MasterID:     999,
}

func newTestService(store *memStore) *Service {
	return NewService(store, NewCatalog(store, time.Minute), &fakeReceipts{}, testConfig)
}
