package hunt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/hostelhunt/internal/apperror"
)

// ClaimResult is the outcome of a claim attempt. Hash is set only when the
// claim succeeded; Reply is empty when nothing should be sent.
type ClaimResult struct {
	Reply string
	Hash  string
}

// Receipt returns the message carrying the verification hash.
func (r ClaimResult) Receipt() string {
	if r.Hash == "" {
		return ""
	}
	return fmt.Sprintf(MsgClaimReceipt, r.Hash)
}

// Claim handles /claim <token>.
func (s *Service) Claim(ctx context.Context, userID int64, args []string, now time.Time) (ClaimResult, error) {
	switch {
	case len(args) == 0:
		return ClaimResult{Reply: MsgClaimMissing}, nil
	case len(args) > 1:
		return ClaimResult{Reply: MsgClaimTooMany}, nil
	}
	code := args[0]

	known, err := s.catalog.Contains(ctx, code)
	if err != nil {
		return ClaimResult{Reply: MsgGenericFailure}, err
	}
	if !known {
		return ClaimResult{Reply: MsgClaimInvalidToken}, nil
	}

	unclaimed, err := s.store.ListUnclaimedTokenCodes(ctx)
	if err != nil {
		return ClaimResult{Reply: MsgGenericFailure}, fmt.Errorf("failed to list unclaimed tokens: %w", err)
	}
	if !contains(unclaimed, code) {
		return ClaimResult{Reply: MsgClaimTaken}, nil
	}

	_, err = s.store.GetParticipant(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return ClaimResult{}, nil
	}
	if err != nil {
		return ClaimResult{Reply: MsgGenericFailure}, fmt.Errorf("failed to get participant: %w", err)
	}

	hash, err := s.receipts.Issue(code, userID, now)
	if err != nil {
		return ClaimResult{Reply: MsgGenericFailure}, fmt.Errorf("failed to issue receipt: %w", err)
	}

	err = s.store.ClaimToken(ctx, code, userID, hash, now)
	if errors.Is(err, apperror.ErrConflict) {
		return ClaimResult{Reply: MsgClaimTaken}, nil
	}
	if err != nil {
		return ClaimResult{Reply: MsgGenericFailure}, fmt.Errorf("failed to claim token: %w", err)
	}

	return ClaimResult{Reply: MsgClaimSuccess, Hash: hash}, nil
}

// Verify handles /verify <hash>.
func (s *Service) Verify(ctx context.Context, args []string) (string, error) {
	switch {
	case len(args) == 0:
		return MsgHashMissingArg, nil
	case len(args) > 1:
		return MsgHashTooMany, nil
	}

	hashes, err := s.store.ListClaimedHashes(ctx)
	if err != nil {
		return MsgGenericFailure, fmt.Errorf("failed to list claimed hashes: %w", err)
	}
	if contains(hashes, args[0]) {
		return MsgHashFound, nil
	}
	return MsgHashMissing, nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
