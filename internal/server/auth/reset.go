package auth

import (
	"time"

	"github.com/konasal/konasal-backend/internal/common"
)

const resetTokenBytes = 32

// NewResetToken returns a 64 character hex token and the instant it stops
// being valid.
func NewResetToken(now time.Time, validity time.Duration) (string, time.Time, error) {
	token, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(validity), nil
}

// ResetTokenValid reports whether a token expiring at expiresAt may still be
// used at now. The expiry instant itself is already too late.
func ResetTokenValid(expiresAt, now time.Time) bool {
	return expiresAt.After(now)
}
