package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicOmitsSecrets(t *testing.T) {
	token := "abc"
	exp := time.Now()
	u := &User{
		ID:                  "u-1",
		Name:                "Alice",
		Email:               "a@x.com",
		PasswordHash:        "$2a$10$hash",
		Role:                "user",
		ResetToken:          &token,
		ResetTokenExpiresAt: &exp,
	}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, map[string]any{"id": "u-1", "name": "Alice", "email": "a@x.com", "role": "user"}, got)
}
