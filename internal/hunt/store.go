package hunt

import (
	"context"
	"time"

	"github.com/example/hostelhunt/pkg/models"
)

// Store is the persistence the game logic runs against.
//
// Lookups of a missing participant return an error matching
// apperror.ErrNotFound. ClaimToken and SetStudentID are conditional writes and
// return an error matching apperror.ErrConflict when the condition no longer
// holds at write time.
type Store interface {
	ListTokenCodes(ctx context.Context) ([]string, error)
	ListUnclaimedTokenCodes(ctx context.Context) ([]string, error)
	GetParticipant(ctx context.Context, userID int64) (*models.Participant, error)
	UpsertParticipant(ctx context.Context, p *models.Participant) error
	SetStudentID(ctx context.Context, userID int64, studentID int) error
	SetLastHintTime(ctx context.Context, userID int64, at time.Time) error
	ListStudentIDs(ctx context.Context) ([]int, error)
	ClaimToken(ctx context.Context, code string, userID int64, hash string, claimedAt time.Time) error
	HintPool(ctx context.Context) ([]string, error)
	ListClaimedHashes(ctx context.Context) ([]string, error)
	ListParticipantIDs(ctx context.Context) ([]int64, error)
}

// ReceiptIssuer creates the verification hash handed out on a claim.
type ReceiptIssuer interface {
	Issue(code string, userID int64, claimedAt time.Time) (string, error)
}
