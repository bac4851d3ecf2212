package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/dbx"
	"github.com/konasal/konasal-backend/internal/server/mailer"
	"github.com/konasal/konasal-backend/internal/server/models"
	"github.com/konasal/konasal-backend/internal/server/repositories/forms"
	"github.com/konasal/konasal-backend/internal/server/repositories/leads"
	"github.com/konasal/konasal-backend/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memUsers is an in-memory users.Repository with the same semantics as the
// PostgreSQL one.
type memUsers struct {
	mu   sync.Mutex
	rows map[string]*models.User

	getErr    error
	createErr error
	setErr    error
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]*models.User{}} }

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.ResetToken != nil {
		t := *u.ResetToken
		c.ResetToken = &t
	}
	if u.ResetTokenExpiresAt != nil {
		e := *u.ResetTokenExpiresAt
		c.ResetTokenExpiresAt = &e
	}
	return &c
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, r := range m.rows {
		if r.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	m.rows[u.ID] = cloneUser(u)
	return u, nil
}

func (m *memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, r := range m.rows {
		if r.Email == email {
			return cloneUser(r), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.rows[id]; ok {
		return cloneUser(r), nil
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	r, ok := m.rows[userID]
	if !ok {
		return common.ErrorNotFound
	}
	r.ResetToken, r.ResetTokenExpiresAt = &token, &expiresAt
	return nil
}

func (m *memUsers) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ResetToken != nil && *r.ResetToken == token && r.ResetTokenExpiresAt.After(now) {
			return cloneUser(r), nil
		}
	}
	return nil, common.ErrInvalidResetToken
}

func (m *memUsers) ResetPassword(ctx context.Context, userID, token string, now time.Time, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[userID]
	if !ok || r.ResetToken == nil || *r.ResetToken != token || !r.ResetTokenExpiresAt.After(now) {
		return common.ErrInvalidResetToken
	}
	r.PasswordHash = hash
	r.ResetToken, r.ResetTokenExpiresAt = nil, nil
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memUsers) byEmail(email string) *models.User {
	u, _ := m.GetUserByEmail(context.Background(), email)
	return u
}

type fakeLeads struct {
	leads.Repository
	created   []*models.EbookLead
	createErr error
	listOut   []*models.EbookLead
	listErr   error
	deleteErr error
	deleted   []string
}

func (f *fakeLeads) Create(ctx context.Context, l *models.EbookLead) (*models.EbookLead, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, c := range f.created {
		if c.Email == l.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	f.created = append(f.created, l)
	return l, nil
}

func (f *fakeLeads) List(ctx context.Context) ([]*models.EbookLead, error) {
	return f.listOut, f.listErr
}

func (f *fakeLeads) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeForms struct {
	forms.Repository
	createOut *models.FormSubmission
	createErr error
	listOut   []*models.FormSubmission
	listErr   error
	deleteErr error
	got       *models.FormSubmission
}

func (f *fakeForms) Create(ctx context.Context, form *models.FormSubmission) (*models.FormSubmission, error) {
	f.got = form
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	form.ID = uuid.NewString()
	return form, nil
}

func (f *fakeForms) ListWithSubmitter(ctx context.Context) ([]*models.FormSubmission, error) {
	return f.listOut, f.listErr
}

func (f *fakeForms) Delete(ctx context.Context, id string) error { return f.deleteErr }

type fakeRepoManager struct {
	u *memUsers
	l *fakeLeads
	f *fakeForms
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Leads(db dbx.DBTX) leads.Repository           { return m.l }
func (m *fakeRepoManager) Forms(db dbx.DBTX) forms.Repository           { return m.f }

type sentMail struct {
	To, Subject, HTML string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (f *fakeMailer) Close() error { return nil }

type fakeEnqueuer struct {
	msgs []mailer.Message
}

func (f *fakeEnqueuer) Enqueue(msg mailer.Message) bool {
	f.msgs = append(f.msgs, msg)
	return true
}
