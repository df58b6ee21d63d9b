package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkwell/blog/internal/dto"
	"github.com/inkwell/blog/internal/metrics"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/repository"
	"github.com/inkwell/blog/internal/utils"

	"github.com/google/uuid"
)

// AuthService registration, login and session handling
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	jwtManager *utils.JWTManager
	now        func() time.Time
}

// LoginResult an established session
type LoginResult struct {
	Token   string
	User    *models.User
	Session *models.Session
}

// NewAuthService creates an AuthService. Sessions live as long as jwtManager's tokens.
func NewAuthService(users UserStore, sessions SessionStore, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

// Register creates a user. An existing username yields ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, validationError("username is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, validationError("password is required")
	}

	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hashedPassword,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.UsersRegisteredTotal.Inc()
	return user, nil
}

// Login checks credentials and opens a session
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := utils.CheckPassword(req.Password, user.PasswordHash); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("check password: %w", err)
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.jwtManager.ExpireTime()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.jwtManager.GenerateToken(user.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, User: user, Session: session}, nil
}

// Authenticate resolves a session token to its user. Every failure is ErrAuthenticationRequired
// except store errors.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAuthenticationRequired, err)
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: session ended", ErrAuthenticationRequired)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID {
		return nil, nil, fmt.Errorf("%w: session user mismatch", ErrAuthenticationRequired)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, nil, fmt.Errorf("%w: session expired", ErrAuthenticationRequired)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: user gone", ErrAuthenticationRequired)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, session, nil
}

// Logout ends the session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrAuthenticationRequired
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type expiredSessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PurgeExpiredSessions removes expired sessions from stores that do not expire them on their own
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purger, ok := s.sessions.(expiredSessionPurger)
	if !ok {
		return 0, nil
	}
	return purger.DeleteExpired(ctx, s.now())
}
