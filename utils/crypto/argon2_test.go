package cryptopackage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFromPassword(t *testing.T) {
	hash, err := GenerateFromPassword("mysecretpassword123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=2,p=4$"))

	other, err := GenerateFromPassword("mysecretpassword123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ")
}

func TestPasswordHashRoundTrip(t *testing.T) {
	passwords := []string{
		"short",
		"medium length password",
		"密码测试",
		"🔐🔑🔒",
	}

	for _, password := range passwords {
		hash, err := GenerateFromPassword(password)
		require.NoError(t, err, "password: %s", password)

		match, err := ComparePasswordAndHash(password, hash)
		require.NoError(t, err)
		assert.True(t, match, "password: %s", password)

		match, err = ComparePasswordAndHash(password+"wrong", hash)
		require.NoError(t, err)
		assert.False(t, match, "password: %s", password)
	}
}

func TestComparePasswordAndHash_InvalidFormat(t *testing.T) {
	invalid := []string{
		"",
		"invalid",
		"$argon2i$v=19$m=65536,t=2,p=4$salt$hash",
		"$argon2id$v=19$m=65536,t=2,p=4$",
		"$argon2id$vx=19$m=65536,t=2,p=4$c2FsdA$hash",
		"$argon2id$v=18$m=65536,t=2,p=4$c2FsdA$hash",
		"$argon2id$v=19$invalid_params$c2FsdA$hash",
		"$argon2id$v=19$m=65536,t=2,p=4$!!!invalid!!!$!!!invalid!!!",
	}

	for _, hash := range invalid {
		match, err := ComparePasswordAndHash("password", hash)
		assert.ErrorIs(t, err, ErrInvalidHash, "hash: %s", hash)
		assert.False(t, match, "hash: %s", hash)
	}
}

func BenchmarkComparePasswordAndHash(b *testing.B) {
	hash, err := GenerateFromPassword("benchmarkpassword123")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ComparePasswordAndHash("benchmarkpassword123", hash); err != nil {
			b.Fatal(err)
		}
	}
}
