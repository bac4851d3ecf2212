// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, the password reset flow and
// session token verification.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/dbx"
	"github.com/konasal/konasal-backend/internal/logging"
	"github.com/konasal/konasal-backend/internal/server/auth"
	"github.com/konasal/konasal-backend/internal/server/config"
	"github.com/konasal/konasal-backend/internal/server/mailer"
	"github.com/konasal/konasal-backend/internal/server/models"
	"github.com/konasal/konasal-backend/internal/server/repositories/repomanager"
	"github.com/konasal/konasal-backend/internal/timex"
)

// Enqueuer accepts mail for background delivery.
type Enqueuer interface {
	Enqueue(msg mailer.Message) bool
}

// LoginResult is a signed session token plus the public view of its user.
type LoginResult struct {
	Token string
	User  models.PublicUser
}

// UserService provides authentication-related operations:
// - Register: create users and queue a welcome mail
// - Login: verify credentials and mint a session token
// - ForgotPassword / ResetPassword: the emailed reset token lifecycle
// - Authenticate: resolve a session token to its user
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	mailer                       mailer.Mailer
	notifier                     Enqueuer
	logger                       logging.Logger
	clock                        timex.Clock
	jwtSecret                    []byte
	sessionTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
	bcryptCost                   int
	publicWebOrigin              string
}

// NewUserService constructs a UserService using repositories and server config.
// m sends reset mail synchronously, n receives welcome mail for background
// delivery.
func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config,
	m mailer.Mailer, n Enqueuer, logger logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  rm,
		mailer:                       m,
		notifier:                     n,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		sessionTokenValidityDuration: cfg.SessionTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
		publicWebOrigin:              strings.TrimRight(cfg.PublicWebOrigin, "/"),
	}
}

// Register creates an account with role "user". The welcome mail is queued
// only after the row is stored and never affects the result.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash, Role: common.RoleUser})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.queueWelcome(ctx, u)
	return u, nil
}

func (s *UserService) queueWelcome(ctx context.Context, u *models.User) {
	if s.notifier == nil {
		return
	}
	html, err := mailer.RenderWelcome(u.Name)
	if err != nil {
		s.logger.Error(ctx, "render welcome mail", "user_id", u.ID, "error", err)
		return
	}
	s.notifier.Enqueue(mailer.Message{To: u.Email, Subject: mailer.WelcomeSubject, HTML: html})
}

// Login checks the credentials and returns a session token. An unknown email
// yields common.ErrorNotFound and a wrong password common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateTokenAt(user.ID, s.jwtSecret, s.clock.Now(), s.sessionTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: signing token: %v", common.ErrorInternal, err)
	}

	return &LoginResult{Token: token, User: user.Public()}, nil
}

// ForgotPassword issues a fresh reset token, replacing any earlier one, and
// mails the reset link. The token stays stored even if sending fails.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	token, expiresAt, err := auth.NewResetToken(s.clock.Now(), s.resetTokenValidityDuration)
	if err != nil {
		return fmt.Errorf("%w: generating reset token: %v", common.ErrorInternal, err)
	}

	if err := repo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	html, err := mailer.RenderResetPassword(user.Name, s.ResetLink(token), s.resetTokenValidityDuration)
	if err != nil {
		return fmt.Errorf("%w: rendering reset mail: %v", common.ErrorInternal, err)
	}

	if err := s.mailer.Send(ctx, user.Email, mailer.ResetPasswordSubject, html); err != nil {
		s.logger.Error(ctx, "reset mail not sent", "user_id", user.ID, "error", err)
		return fmt.Errorf("error sending reset mail: %w", err)
	}

	return nil
}

// ResetLink is the page the reset mail points to.
func (s *UserService) ResetLink(token string) string {
	return s.publicWebOrigin + "/reset-password/" + token
}

// ResetPassword consumes token and sets a new password. Unknown, expired and
// already used tokens all yield common.ErrInvalidResetToken.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: token and newPassword are required", common.ErrorValidation)
	}

	now := s.clock.Now()
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByResetToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, common.ErrInvalidResetToken) {
			return common.ErrInvalidResetToken
		}
		return fmt.Errorf("error searching reset token: %w", err)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if err := repo.ResetPassword(ctx, user.ID, token, now, hash); err != nil {
		if errors.Is(err, common.ErrInvalidResetToken) {
			return common.ErrInvalidResetToken
		}
		return fmt.Errorf("error resetting password: %w", err)
	}

	return nil
}

// Authenticate resolves a session token to its user. Tokens for users that no
// longer exist are invalid.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := auth.GetUserIDFromTokenAt(token, s.jwtSecret, s.clock.Now())
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates an admin account unless one with the email exists.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, fmt.Errorf("%w: admin email and password are required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}

	created := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if _, err := repo.GetUserByEmail(ctx, email); err == nil {
			return nil
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error searching user: %w", err)
		}
		if _, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash, Role: common.RoleAdmin}); err != nil {
			return fmt.Errorf("error creating admin: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
