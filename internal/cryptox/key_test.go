package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportVaultKey_WrongLength(t *testing.T) {
	_, err := ImportVaultKey([]byte("too short"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImportVaultKey_WipesSource(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, KeyLength)
	k, err := ImportVaultKey(raw)
	require.NoError(t, err)

	assert.Equal(t, make([]byte, KeyLength), raw)
	assert.False(t, k.Extractable())
}

func TestVaultKey_ExportOnce(t *testing.T) {
	k, err := DeriveVaultKey([]byte("pw"), testSalt, testIterations, true)
	require.NoError(t, err)
	require.True(t, k.Extractable())

	raw, err := k.Export()
	require.NoError(t, err)
	assert.Len(t, raw, KeyLength)

	_, err = k.Export()
	assert.ErrorIs(t, err, ErrKeyNotExtractable)
	assert.False(t, k.Extractable())
}

func TestVaultKey_NonExtractable(t *testing.T) {
	k, err := DeriveVaultKey([]byte("pw"), testSalt, testIterations, false)
	require.NoError(t, err)

	_, err = k.Export()
	assert.ErrorIs(t, err, ErrKeyNotExtractable)
}

func TestVaultKey_ExportedBytesMatchDerivation(t *testing.T) {
	k, err := DeriveVaultKey([]byte("pw"), testSalt, testIterations, true)
	require.NoError(t, err)
	raw, err := k.Export()
	require.NoError(t, err)

	want, err := DeriveBits([]byte("pw"), testSalt, LabelVault, testIterations, KeyLength)
	require.NoError(t, err)
	assert.Equal(t, want, raw)
}

func TestVaultKey_Destroy(t *testing.T) {
	k, err := DeriveVaultKey([]byte("pw"), testSalt, testIterations, true)
	require.NoError(t, err)

	k.Destroy()
	assert.True(t, k.Destroyed())

	_, err = k.Export()
	assert.ErrorIs(t, err, ErrKeyDestroyed)
	_, err = EncryptField("x", k)
	assert.ErrorIs(t, err, ErrKeyDestroyed)

	var nilKey *VaultKey
	assert.NotPanics(t, func() { nilKey.Destroy() })
}
