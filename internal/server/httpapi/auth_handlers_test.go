package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/server/models"
	"github.com/konasal/konasal-backend/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		code    int
		message string
	}{
		{"created", `{"name":"Ann","email":"a@x.com","password":"pw1"}`, nil, http.StatusCreated, "User registered successfully"},
		{"duplicate", `{"name":"Ann","email":"a@x.com","password":"pw1"}`, fmt.Errorf("%w: a@x.com", common.ErrorAlreadyExists), http.StatusBadRequest, "User already exists"},
		{"missing fields", `{"email":"a@x.com"}`, common.ErrorValidation, http.StatusBadRequest, "Please provide name, email and password"},
		{"malformed body", `{"name":`, nil, http.StatusBadRequest, msgInvalidBody},
		{"internal", `{"name":"Ann","email":"a@x.com","password":"pw1"}`, errBoom{}, http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{
				registerFn: func(_ context.Context, name, email, password string) (*models.User, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &models.User{ID: "u1", Name: name, Email: email, Role: common.RoleUser}, nil
				},
			}
			h := newTestServer(users, nil, nil).Router()

			rec := do(t, h, http.MethodPost, "/api/auth/register", tt.body)

			require.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["message"])
		})
	}
}

func TestLogin(t *testing.T) {
	users := &fakeUsers{
		loginFn: func(_ context.Context, email, password string) (*services.LoginResult, error) {
			switch {
			case email == "nobody@x.com":
				return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, email)
			case password != "pw1":
				return nil, common.ErrorUnauthorized
			}
			return &services.LoginResult{
				Token: "jwt",
				User:  models.PublicUser{ID: "u1", Name: "Ann", Email: email, Role: common.RoleUser},
			}, nil
		},
	}
	h := newTestServer(users, nil, nil).Router()

	t.Run("ok", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"pw1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, "jwt", body["token"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "a@x.com", user["email"])
		assert.Equal(t, common.RoleUser, user["role"])
		assert.NotContains(t, user, "password")
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/auth/login", `{"email":"nobody@x.com","password":"pw1"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "User not found", decode(t, rec)["message"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"nope"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid credentials", decode(t, rec)["message"])
	})
}

func TestForgotPassword(t *testing.T) {
	users := &fakeUsers{
		forgotFn: func(_ context.Context, email string) error {
			switch email {
			case "a@x.com":
				return nil
			case "down@x.com":
				return fmt.Errorf("send: %w", errBoom{})
			}
			return common.ErrorNotFound
		},
	}
	h := newTestServer(users, nil, nil).Router()

	rec := do(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset email sent successfully", decode(t, rec)["message"])

	rec = do(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@x.com"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])

	rec = do(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"down@x.com"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestResetPassword(t *testing.T) {
	var gotToken, gotPassword string
	users := &fakeUsers{
		resetFn: func(_ context.Context, token, newPassword string) error {
			if token != "good" {
				return common.ErrInvalidResetToken
			}
			gotToken, gotPassword = token, newPassword
			return nil
		},
	}
	h := newTestServer(users, nil, nil).Router()

	rec := do(t, h, http.MethodPost, "/api/auth/reset-password", `{"token":"good","newPassword":"pw2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset successful", decode(t, rec)["message"])
	assert.Equal(t, "good", gotToken)
	assert.Equal(t, "pw2", gotPassword)

	rec = do(t, h, http.MethodPost, "/api/auth/reset-password", `{"token":"stale","newPassword":"pw2"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired token", decode(t, rec)["message"])
}

func TestMe(t *testing.T) {
	h := newTestServer(&fakeUsers{}, nil, nil).Router()

	rec := do(t, h, http.MethodGet, "/api/auth/me", "", bearer("user-token")...)

	require.Equal(t, http.StatusOK, rec.Code)
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.Equal(t, "Ann", user["name"])
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}
