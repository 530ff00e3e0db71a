package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret(16)
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	_, err = hex.DecodeString(secret)
	assert.NoError(t, err)
}

func TestGenerateJWTSecrets(t *testing.T) {
	access, refresh, err := GenerateJWTSecrets()
	require.NoError(t, err)

	assert.Len(t, access, 64)
	assert.Len(t, refresh, 64)
	assert.NotEqual(t, access, refresh)
}
