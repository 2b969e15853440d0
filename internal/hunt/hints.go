package hunt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/hostelhunt/internal/apperror"
)

// RequestHint handles /hint.
//
// A user gets at most one hint per HintInterval. The cooldown only starts once
// a hint was actually handed out, so an empty pool never throttles.
func (s *Service) RequestHint(ctx context.Context, userID int64, now time.Time) (string, error) {
	p, err := s.store.GetParticipant(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return MsgRegisteredOnly, nil
	}
	if err != nil {
		return MsgGenericFailure, fmt.Errorf("failed to get participant: %w", err)
	}

	if p.LastHint != nil {
		interval := int64(s.cfg.HintInterval / time.Second)
		if now.Unix()-p.LastHint.Unix() < interval {
			return fmt.Sprintf(MsgHintCooldown, p.LastHint.Unix()+interval-now.Unix()), nil
		}
	}

	pool, err := s.store.HintPool(ctx)
	if err != nil {
		return MsgGenericFailure, fmt.Errorf("failed to collect hints: %w", err)
	}
	if len(pool) == 0 {
		return MsgNoHints, nil
	}

	hint, err := s.pick(pool)
	if err != nil {
		return MsgGenericFailure, err
	}

	if err := s.store.SetLastHintTime(ctx, userID, now); err != nil {
		return MsgGenericFailure, fmt.Errorf("failed to update last hint time: %w", err)
	}
	return hint, nil
}
