package database

import (
	"context"
	"time"

	"github.com/example/hostelhunt/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Store exposes the repositories through the interface the game logic uses.
type Store struct {
	Participants *ParticipantRepository
	Tokens       *TokenRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		Participants: NewParticipantRepository(db),
		Tokens:       NewTokenRepository(db),
	}
}

func (s *Store) ListTokenCodes(ctx context.Context) ([]string, error) {
	return s.Tokens.ListCodes(ctx)
}

func (s *Store) ListUnclaimedTokenCodes(ctx context.Context) ([]string, error) {
	return s.Tokens.ListUnclaimedCodes(ctx)
}

func (s *Store) GetParticipant(ctx context.Context, userID int64) (*models.Participant, error) {
	return s.Participants.GetByID(ctx, userID)
}

func (s *Store) UpsertParticipant(ctx context.Context, p *models.Participant) error {
	return s.Participants.Upsert(ctx, p)
}

func (s *Store) SetStudentID(ctx context.Context, userID int64, studentID int) error {
	return s.Participants.SetStudentID(ctx, userID, studentID)
}

func (s *Store) SetLastHintTime(ctx context.Context, userID int64, at time.Time) error {
	return s.Participants.SetLastHint(ctx, userID, at)
}

func (s *Store) ListStudentIDs(ctx context.Context) ([]int, error) {
	return s.Participants.ListStudentIDs(ctx)
}

func (s *Store) ClaimToken(ctx context.Context, code string, userID int64, hash string, claimedAt time.Time) error {
	return s.Tokens.Claim(ctx, code, userID, hash, claimedAt)
}

func (s *Store) HintPool(ctx context.Context) ([]string, error) {
	return s.Tokens.HintPool(ctx)
}

func (s *Store) ListClaimedHashes(ctx context.Context) ([]string, error) {
	return s.Tokens.ListClaimedHashes(ctx)
}

func (s *Store) ListParticipantIDs(ctx context.Context) ([]int64, error) {
	return s.Participants.ListIDs(ctx)
}
