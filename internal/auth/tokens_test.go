package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestIssueAndVerifyAccessToken(t *testing.T) {
	token, err := IssueAccessToken(testSecret, 42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := VerifyAccessToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestAccessTokenZeroTTLExpired(t *testing.T) {
	// Expiry is exclusive of "now": a zero-TTL token is already expired.
	token, err := IssueAccessToken(testSecret, 1, 0)
	require.NoError(t, err)

	_, err = VerifyAccessToken(testSecret, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := IssueAccessToken("secret1", 1, time.Hour)
	require.NoError(t, err)

	_, err = VerifyAccessToken("secret2", token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenMalformed(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := VerifyAccessToken(testSecret, tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestIssueAndVerifyResetToken(t *testing.T) {
	token, err := IssueResetToken(testSecret, "a@x.com", 48*time.Hour)
	require.NoError(t, err)

	email, err := VerifyResetToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestResetTokenWrongSecret(t *testing.T) {
	token, err := IssueResetToken("secret1", "a@x.com", time.Hour)
	require.NoError(t, err)

	_, err = VerifyResetToken("secret2", token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetTokenExpired(t *testing.T) {
	token, err := IssueResetToken(testSecret, "a@x.com", 0)
	require.NoError(t, err)

	_, err = VerifyResetToken(testSecret, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetTokenNotAccessToken(t *testing.T) {
	// A reset token carries an email subject, so it never parses as a user ID.
	token, err := IssueResetToken(testSecret, "a@x.com", time.Hour)
	require.NoError(t, err)

	_, err = VerifyAccessToken(testSecret, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
