package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    *Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "60", "-r", "5",
				"-o", "https://site.test", "-m", "smtp", "-l", "debug", "-cors", "https://site.test,http://localhost:3000",
				"-c", "ignored.json",
			},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:9090",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				SessionTokenValidityDuration: time.Hour,
				ResetTokenValidityDuration:   5 * time.Minute,
				PublicWebOrigin:              "https://site.test",
				MailProvider:                 "smtp",
				LogLevel:                     "debug",
				AllowedOrigins:               []string{"https://site.test", "http://localhost:3000"},
			},
		},
		{
			name: "unset duration flags leave sub-minute values alone",
			args: []string{"-a", ":1"},
			expected: &Config{
				EndpointAddrHTTP:           ":1",
				ResetTokenValidityDuration: 90 * time.Second,
			},
		},
		{
			name:        "bad int",
			args:        []string{"-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{ResetTokenValidityDuration: 90 * time.Second}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
