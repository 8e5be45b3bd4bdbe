package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	auth "github.com/in6bv/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

// Legacy cost parameters used by the retired scheme. They intentionally match
// the service defaults so old blobs keep verifying.
const (
	legacyTime     = 2
	legacyMemory   = 100 * 1024
	legacyParallel = 8
)

func TestHashPassword(t *testing.T) {
	t.Run("produces the standard format", func(t *testing.T) {
		hash, err := auth.HashPassword("correct horse battery staple")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=102400,t=2,p=8$"))

		parts := strings.Split(hash, "$")
		require.Len(t, parts, 6)

		salt, err := base64.StdEncoding.DecodeString(parts[4])
		require.NoError(t, err)
		assert.Len(t, salt, 16)

		digest, err := base64.StdEncoding.DecodeString(parts[5])
		require.NoError(t, err)
		assert.Len(t, digest, 32)
	})

	t.Run("round trips through verify", func(t *testing.T) {
		hash, err := auth.HashPassword("correct horse battery staple")
		require.NoError(t, err)

		ok, err := auth.VerifyPassword("correct horse battery staple", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a different password", func(t *testing.T) {
		hash, err := auth.HashPassword("correct horse battery staple")
		require.NoError(t, err)

		ok, err := auth.VerifyPassword("incorrect horse battery staple", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("never reuses a salt", func(t *testing.T) {
		first, err := auth.HashPassword("same password")
		require.NoError(t, err)
		second, err := auth.HashPassword("same password")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.NotEqual(t, strings.Split(first, "$")[4], strings.Split(second, "$")[4])
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := auth.HashPassword("")
		assert.ErrorIs(t, err, auth.ErrNoEmptyString)
	})
}

func TestVerifyPasswordLegacyFormat(t *testing.T) {
	password := "legacy-password-123"
	salt := []byte("0123456789abcdef")
	digest := argon2.IDKey([]byte(password), salt, legacyTime, legacyMemory, legacyParallel, 32)
	stored := base64.StdEncoding.EncodeToString(append(append([]byte{}, salt...), digest...))

	t.Run("verifies a legacy blob", func(t *testing.T) {
		ok, err := auth.VerifyPassword(password, stored)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a flipped hash byte", func(t *testing.T) {
		corrupted := append(append([]byte{}, salt...), digest...)
		corrupted[len(corrupted)-1] ^= 0x01

		ok, err := auth.VerifyPassword(password, base64.StdEncoding.EncodeToString(corrupted))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects a truncated blob", func(t *testing.T) {
		ok, err := auth.VerifyPassword(password, base64.StdEncoding.EncodeToString(digest))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestVerifyPasswordBase64Normalization(t *testing.T) {
	hash, err := auth.HashPassword("normalize me please")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)

	toURLSafe := func(s string) string {
		s = strings.ReplaceAll(s, "+", "-")
		s = strings.ReplaceAll(s, "/", "_")
		return strings.TrimRight(s, "=")
	}

	// Salt and hash written by the url-safe producer, no padding.
	rewritten := strings.Join([]string{
		parts[0], parts[1], parts[2], parts[3],
		toURLSafe(parts[4]),
		toURLSafe(parts[5]),
	}, "$")

	ok, err := auth.VerifyPassword("normalize me please", rewritten)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordMalformedInput(t *testing.T) {
	cases := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"garbage", "not-a-valid-format"},
		{"wrong segment count", "$argon2id$v=19$m=102400,t=2,p=8$onlyonesegment"},
		{"extra segments", "$argon2id$v=19$m=102400,t=2,p=8$c2FsdA==$aGFzaA==$extra"},
		{"bad version tag", "$argon2id$version=19$m=102400,t=2,p=8$c2FsdA==$aGFzaA=="},
		{"bad cost params", "$argon2id$v=19$m=banana,t=2,p=8$c2FsdA==$aGFzaA=="},
		{"zero cost", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA==$aGFzaA=="},
		{"parallelism overflow", "$argon2id$v=19$m=102400,t=2,p=4096$c2FsdA==$aGFzaA=="},
		{"bad salt base64", "$argon2id$v=19$m=102400,t=2,p=8$!!!$aGFzaA=="},
		{"bad hash base64", "$argon2id$v=19$m=102400,t=2,p=8$c2FsdA==$!!!"},
		{"legacy wrong length", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"legacy invalid base64", "%%%%%%%%"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := auth.VerifyPassword("whatever", tc.stored)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyPasswordEmptyPassword(t *testing.T) {
	_, err := auth.VerifyPassword("", "$argon2id$v=19$m=102400,t=2,p=8$c2FsdA==$aGFzaA==")
	assert.ErrorIs(t, err, auth.ErrNoEmptyString)
}

func TestDecodeCredential(t *testing.T) {
	t.Run("tags the standard format", func(t *testing.T) {
		hash, err := auth.HashPassword("tagging test password")
		require.NoError(t, err)

		credential := auth.DecodeCredential(hash)
		assert.Equal(t, auth.FormatStandard, credential.Format)
		assert.EqualValues(t, 2, credential.Iterations)
		assert.EqualValues(t, 102400, credential.Memory)
		assert.EqualValues(t, 8, credential.Parallelism)
		assert.Len(t, credential.Salt, 16)
		assert.Len(t, credential.Hash, 32)
	})

	t.Run("tags the legacy format with fixed parameters", func(t *testing.T) {
		blob := make([]byte, 48)
		credential := auth.DecodeCredential(base64.StdEncoding.EncodeToString(blob))

		assert.Equal(t, auth.FormatLegacy, credential.Format)
		assert.EqualValues(t, 2, credential.Iterations)
		assert.EqualValues(t, 102400, credential.Memory)
		assert.EqualValues(t, 8, credential.Parallelism)
	})

	t.Run("tags garbage as unparsable", func(t *testing.T) {
		credential := auth.DecodeCredential("$argon2id$nope")
		assert.Equal(t, auth.FormatUnparsable, credential.Format)
	})
}

func TestRandomPasswordHash(t *testing.T) {
	hash := auth.RandomPasswordHash()
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
}
