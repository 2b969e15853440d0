// Package hunt implements the Hostel Hunt game rules: the registration
// conversation, hint rationing, token claims and claim verification.
package hunt

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/example/hostelhunt/internal/apperror"
)

// Config holds the game settings.
type Config struct {
	AuthToken    string
	StudentIDMin int
	StudentIDMax int
	HintInterval time.Duration
	AdminIDs     []int64
	MasterID     int64
}

// User identifies the sender of an update.
type User struct {
	ID   int64
	Name string
}

// Service runs the game rules against a Store.
type Service struct {
	store    Store
	catalog  *Catalog
	sessions *Sessions
	receipts ReceiptIssuer
	cfg      Config
	admins   map[int64]bool
	random   io.Reader
}

func NewService(store Store, catalog *Catalog, receipts ReceiptIssuer, cfg Config) *Service {
	admins := make(map[int64]bool, len(cfg.AdminIDs)+1)
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}
	if cfg.MasterID != 0 {
		admins[cfg.MasterID] = true
	}

	return &Service{
		store:    store,
		catalog:  catalog,
		sessions: NewSessions(),
		receipts: receipts,
		cfg:      cfg,
		admins:   admins,
		random:   rand.Reader,
	}
}

// Sessions exposes the conversation store used by the dispatcher.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// IsRegistered reports whether userID is a participant with a student ID.
func (s *Service) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	p, err := s.store.GetParticipant(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get participant: %w", err)
	}
	return p.Registered(), nil
}

func (s *Service) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

func (s *Service) IsMaster(userID int64) bool {
	return s.cfg.MasterID != 0 && userID == s.cfg.MasterID
}

// Participants lists the Telegram IDs of everyone who passed the auth step.
func (s *Service) Participants(ctx context.Context) ([]int64, error) {
	ids, err := s.store.ListParticipantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return ids, nil
}

// pick returns a uniformly chosen element using a CSPRNG.
func (s *Service) pick(items []string) (string, error) {
	n, err := rand.Int(s.random, big.NewInt(int64(len(items))))
	if err != nil {
		return "", fmt.Errorf("failed to draw random index: %w", err)
	}
	return items[n.Int64()], nil
}
