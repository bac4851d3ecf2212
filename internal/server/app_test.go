package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/konasal/konasal-backend/internal/logging"
	"github.com/konasal/konasal-backend/internal/server/config"
	"github.com/konasal/konasal-backend/internal/server/mailer"
	"github.com/konasal/konasal-backend/internal/server/repositories/repomanager"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeRepoManager struct {
	repomanager.RepositoryManager
	migrateErr error
	migrated   bool
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.migrateErr
}

// withSeams swaps the package seams for a sqlmock database and a fake
// repository manager, restoring them on cleanup.
func withSeams(t *testing.T, rm *fakeRepoManager) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	oldOpen, oldRM, oldMailer, oldBackoff := openDB, newRepositoryManager, newMailer, pingBackoff
	t.Cleanup(func() {
		openDB, newRepositoryManager, newMailer, pingBackoff = oldOpen, oldRM, oldMailer, oldBackoff
	})

	openDB = func(driver, dsn string) (*sql.DB, error) {
		require.Equal(t, "pgx", driver)
		return db, nil
	}
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	newMailer = func(*config.Config, logging.Logger) (mailer.Mailer, error) {
		return mailer.NewLogMailer(logging.Nop{}), nil
	}
	pingBackoff = func() retry.Backoff {
		return retry.WithMaxRetries(0, retry.NewConstant(time.Millisecond))
	}
	return mock
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_OK(t *testing.T) {
	rm := &fakeRepoManager{}
	mock := withSeams(t, rm)

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	require.True(t, rm.migrated)
	require.NotNil(t, app.Users())

	mock.ExpectClose()
	require.NoError(t, app.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	rm := &fakeRepoManager{}
	withSeams(t, rm)

	c := testConfig()
	c.SecretKey = ""

	_, err := NewApp(context.Background(), c)
	require.ErrorContains(t, err, "invalid config")
	require.False(t, rm.migrated)
}

func TestNewApp_MigrationError(t *testing.T) {
	rm := &fakeRepoManager{migrateErr: errBoom{}}
	mock := withSeams(t, rm)
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig())
	require.ErrorIs(t, err, errBoom{})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MailerError(t *testing.T) {
	rm := &fakeRepoManager{}
	mock := withSeams(t, rm)
	newMailer = func(*config.Config, logging.Logger) (mailer.Mailer, error) {
		return nil, errors.New("unknown mail provider")
	}
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig())
	require.ErrorContains(t, err, "mailer init error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	rm := &fakeRepoManager{}
	mock := withSeams(t, rm)

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	mock.ExpectClose()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_BadAddress(t *testing.T) {
	rm := &fakeRepoManager{}
	mock := withSeams(t, rm)

	c := testConfig()
	c.EndpointAddrHTTP = "127.0.0.1:99999"
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	mock.ExpectClose()

	select {
	case err := <-runAsync(app):
		require.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after listen failure")
	}
}

func runAsync(app *App) <-chan error {
	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	return done
}
