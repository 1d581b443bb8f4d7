package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/beyondbeauty/press/util/common"
)

func TestVaultHashAndVerify(t *testing.T) {
	v := NewVault(bcrypt.MinCost)

	for _, pw := range []string{"secret", "", "pässwörd", strings.Repeat("x", MaxPasswordBytes)} {
		hash, err := v.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, v.Verify(pw, hash), "password %q", pw)
		assert.False(t, v.Verify(pw+"!", hash))
	}
}

func TestVaultHashIsSalted(t *testing.T) {
	v := NewVault(bcrypt.MinCost)

	h1, err := v.Hash("same")
	require.NoError(t, err)
	h2, err := v.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVaultVerifyDifferentPassword(t *testing.T) {
	v := NewVault(bcrypt.MinCost)

	hash, err := v.Hash("alpha")
	require.NoError(t, err)
	assert.False(t, v.Verify("beta", hash))
	assert.False(t, v.Verify("alpha", "not-a-hash"))
}

func TestVaultVerifyRejectsSharedPrefix(t *testing.T) {
	v := NewVault(bcrypt.MinCost)

	stored := strings.Repeat("x", MaxPasswordBytes)
	hash, err := v.Hash(stored)
	require.NoError(t, err)
	assert.True(t, v.Verify(stored, hash))
	assert.False(t, v.Verify(stored+"anything-else", hash))
	assert.False(t, v.Verify(stored+"x", hash))
}

func TestVaultHashTooLong(t *testing.T) {
	v := NewVault(bcrypt.MinCost)

	_, err := v.Hash(strings.Repeat("x", MaxPasswordBytes+1))
	require.Error(t, err)
	var cryptoErr *common.CryptoError
	assert.True(t, errors.As(err, &cryptoErr))
}

func TestNewVaultClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewVault(1).Cost)
	assert.Equal(t, bcrypt.MaxCost, NewVault(99).Cost)
	assert.Equal(t, 10, NewVault(10).Cost)
}
