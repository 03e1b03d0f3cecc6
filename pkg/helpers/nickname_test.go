package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNickname(t *testing.T) {
	assert.Equal(t, "jsmith", GenerateNickname("jsmith@example.com"))
	assert.Equal(t, "first.last+tag", GenerateNickname("first.last+tag@mail.example.org"))
	assert.Equal(t, "noat", GenerateNickname("noat"))
	assert.Equal(t, "", GenerateNickname("@example.com"))
}

func TestNicknameWithSuffix(t *testing.T) {
	got := NicknameWithSuffix("jsmith")
	assert.Regexp(t, regexp.MustCompile(`^jsmith-[0-9a-f]{4}$`), got)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), a)
}
