package auth

import (
	"errors"
	"fmt"

	"github.com/konasal/konasal-backend/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of plain. Passwords longer than
// 72 bytes are rejected with common.ErrorValidation since bcrypt would
// silently ignore the tail.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is longer than 72 bytes", common.ErrorValidation)
		}
		return "", fmt.Errorf("%w: hashing password: %v", common.ErrorInternal, err)
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches hash. A mismatch is not an
// error; only a malformed stored hash is.
func CheckPassword(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: comparing password: %v", common.ErrorInternal, err)
	}
}
