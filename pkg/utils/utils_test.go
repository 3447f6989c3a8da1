package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	h, err := HashPassword("secret-pw")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pw", h)
	assert.True(t, CheckPassword("secret-pw", h))
	assert.False(t, CheckPassword("wrong", h))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9a-f]{32}$`, a)
}

func TestGravatarURL(t *testing.T) {
	// md5("myemailaddress@example.com")
	want := "https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?d=identicon"
	assert.Equal(t, want, GravatarURL("  MyEmailAddress@example.com "))
}
