package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(7, "a@b.c", "", "s3cret", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, token, "Bearer ")

	claims, err := ParseJWT(token, "s3cret")
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Greater(t, claims.Expire, time.Now().Unix())

	// prefix is optional
	_, err = ParseJWT(token[len("Bearer "):], "s3cret")
	assert.NoError(t, err)
}

func TestParseJWT_Rejects(t *testing.T) {
	token, err := GenerateJWT(1, "a@b.c", "admin", "one", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "two")
	assert.Error(t, err)

	_, err = ParseJWT("", "one")
	assert.Error(t, err)

	expired, err := GenerateJWT(1, "a@b.c", "admin", "one", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "one")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}

func TestHashText(t *testing.T) {
	assert.Equal(t, HashText("hello"), HashText("hello"))
	assert.NotEqual(t, HashText("hello"), HashText("Hello"))
	assert.Len(t, HashText(""), 64)
}
