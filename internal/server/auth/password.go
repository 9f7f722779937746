package auth

import (
	"fmt"

	"github.com/dev-c-webd/tube-v/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// bcryptCost is a seam so tests can hash at bcrypt.MinCost.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns a freshly salted bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", common.NewError(common.ErrorValidation, "password is required")
	}
	if len(plain) > maxPasswordBytes {
		return "", common.NewError(common.ErrorValidation, "password must be at most 72 bytes")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// ComparePassword reports whether plain matches hash. Any error, including a
// malformed hash or an over-long password, counts as a mismatch.
func ComparePassword(hash, plain string) bool {
	if hash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
