package repository

import (
	"context"
	"time"

	"github.com/inkwell/blog/internal/models"

	"gorm.io/gorm"
)

// SessionRepository stores sessions in the database
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a SessionRepository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	return translateError(r.db.WithContext(ctx).Omit("User").Create(session).Error)
}

// Get finds a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

// DeleteExpired removes sessions that expired before now
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
