package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateNickname derives a nickname from an email address.
// "jsmith@example.com" -> "jsmith". Input without "@" is returned as is.
func GenerateNickname(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// NicknameWithSuffix appends a short random hex suffix: "jsmith" -> "jsmith-3fa9".
func NicknameWithSuffix(base string) string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return base + "-0000"
	}
	return base + "-" + hex.EncodeToString(b)
}
