package hunt

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/example/hostelhunt/internal/apperror"
	"github.com/example/hostelhunt/pkg/models"
)

var studentIDPattern = regexp.MustCompile(`^[0-9]{7}$`)

// BeginRegistration handles /register.
//
// Participants that passed the auth step but never bound a student ID may
// start over, which is how a user recovers from a student ID collision.
func (s *Service) BeginRegistration(ctx context.Context, user User) (string, error) {
	registered, err := s.IsRegistered(ctx, user.ID)
	if err != nil {
		return MsgGenericFailure, err
	}
	if registered {
		s.sessions.End(user.ID)
		return MsgAlreadyRegistered, nil
	}

	s.sessions.Set(user.ID, StateAwaitingAuthToken)
	return MsgEnterAuthToken, nil
}

// InRegistration reports whether userID is mid-conversation.
func (s *Service) InRegistration(userID int64) bool {
	return s.sessions.State(userID) != StateNone
}

// CancelRegistration handles /cancel. Whatever was committed before stays.
func (s *Service) CancelRegistration(userID int64) string {
	if !s.InRegistration(userID) {
		return MsgNothingToCancel
	}
	s.sessions.End(userID)
	return MsgRegisterCancel
}

// HandleRegistrationText feeds a plain text message into the conversation.
// The text is compared as sent, surrounding spaces included.
func (s *Service) HandleRegistrationText(ctx context.Context, user User, text string) (string, error) {
	switch s.sessions.State(user.ID) {
	case StateAwaitingAuthToken:
		return s.checkAuthToken(ctx, user, text)
	case StateAwaitingStudentID:
		if !studentIDPattern.MatchString(text) {
			return MsgStudentIDFormat, nil
		}
		return s.submitStudentID(ctx, user, text)
	default:
		return MsgUnknownInput, nil
	}
}

func (s *Service) checkAuthToken(ctx context.Context, user User, text string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(text), []byte(s.cfg.AuthToken)) != 1 {
		return MsgInvalidAuthToken, nil
	}

	err := s.store.UpsertParticipant(ctx, &models.Participant{
		UserID: user.ID,
		Name:   user.Name,
	})
	if err != nil {
		return MsgGenericFailure, fmt.Errorf("failed to save participant: %w", err)
	}

	s.sessions.Set(user.ID, StateAwaitingStudentID)
	return MsgEnterStudentID, nil
}

func (s *Service) submitStudentID(ctx context.Context, user User, text string) (string, error) {
	studentID, err := strconv.Atoi(text)
	if err != nil || studentID < s.cfg.StudentIDMin || studentID > s.cfg.StudentIDMax {
		return MsgInvalidStudentID, nil
	}

	taken, err := s.studentIDTaken(ctx, studentID)
	if err != nil {
		return MsgGenericFailure, err
	}
	if taken {
		s.sessions.End(user.ID)
		return MsgStudentIDTaken, nil
	}

	err = s.store.SetStudentID(ctx, user.ID, studentID)
	if errors.Is(err, apperror.ErrConflict) {
		s.sessions.End(user.ID)
		return MsgStudentIDTaken, nil
	}
	if err != nil {
		return MsgGenericFailure, fmt.Errorf("failed to set student ID: %w", err)
	}

	s.sessions.End(user.ID)
	return fmt.Sprintf(MsgRegisteredSuccess, text), nil
}

func (s *Service) studentIDTaken(ctx context.Context, studentID int) (bool, error) {
	ids, err := s.store.ListStudentIDs(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list student IDs: %w", err)
	}
	for _, id := range ids {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}
