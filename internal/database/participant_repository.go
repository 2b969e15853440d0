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

// ParticipantRepository handles database operations for participants
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository creates a new repository instance
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

type participantRow struct {
	UserID    int64         `db:"user_id"`
	Name      string        `db:"name"`
	StudentID int           `db:"student_id"`
	LastHint  sql.NullInt64 `db:"last_hint"`
}

func (r participantRow) toModel() *models.Participant {
	p := &models.Participant{
		UserID:    r.UserID,
		Name:      r.Name,
		StudentID: r.StudentID,
	}
	if r.LastHint.Valid {
		t := time.Unix(r.LastHint.Int64, 0)
		p.LastHint = &t
	}
	return p
}

// GetByID returns a participant by Telegram ID
func (r *ParticipantRepository) GetByID(ctx context.Context, userID int64) (*models.Participant, error) {
	var row participantRow
	query := r.db.Rebind("SELECT user_id, name, student_id, last_hint FROM participants WHERE user_id = ?")

	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("participant", strconv.FormatInt(userID, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return row.toModel(), nil
}

// Upsert inserts a participant or refreshes the name of an existing one.
// A bound student ID is never reset.
func (r *ParticipantRepository) Upsert(ctx context.Context, p *models.Participant) error {
	query := r.db.Rebind(`
		INSERT INTO participants (user_id, name, student_id, last_hint)
		VALUES (?, ?, 0, NULL)
		ON CONFLICT (user_id) DO UPDATE SET name = excluded.name
	`)
	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.Name); err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

// SetStudentID binds studentID to the participant if it has none yet and no
// one else holds it.
func (r *ParticipantRepository) SetStudentID(ctx context.Context, userID int64, studentID int) error {
	query := r.db.Rebind("UPDATE participants SET student_id = ? WHERE user_id = ? AND student_id = 0")

	result, err := r.db.ExecContext(ctx, query, studentID, userID)
	if isUniqueViolation(err) {
		return apperror.Conflict("student", strconv.Itoa(studentID))
	}
	if err != nil {
		return fmt.Errorf("failed to set student id: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, userID); err != nil {
		return err
	}
	return apperror.Conflict("participant", strconv.FormatInt(userID, 10))
}

// SetLastHint records when the participant last received a hint
func (r *ParticipantRepository) SetLastHint(ctx context.Context, userID int64, at time.Time) error {
	query := r.db.Rebind("UPDATE participants SET last_hint = ? WHERE user_id = ?")

	result, err := r.db.ExecContext(ctx, query, at.Unix(), userID)
	if err != nil {
		return fmt.Errorf("failed to set last hint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("participant", strconv.FormatInt(userID, 10))
	}
	return nil
}

// ListStudentIDs returns the student ID of every participant, 0 for unset
func (r *ParticipantRepository) ListStudentIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := r.db.SelectContext(ctx, &ids, "SELECT student_id FROM participants"); err != nil {
		return nil, fmt.Errorf("failed to list student ids: %w", err)
	}
	return ids, nil
}

// ListIDs returns the Telegram ID of every participant
func (r *ParticipantRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, "SELECT user_id FROM participants ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return ids, nil
}
