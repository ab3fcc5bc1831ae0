package asset

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
	"github.com/pushchain/token-quest-client/stakingClient/pda"
)

var (
	testOwner = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	testMint  = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func TestNativeIdentity(t *testing.T) {
	id := Native()

	assert.True(t, id.IsNative())
	assert.Equal(t, []byte("sol"), id.Seed())
	assert.Nil(t, id.StakeSeed())
	assert.Equal(t, "sol", id.String())

	_, ok := id.Mint()
	assert.False(t, ok)

	accounts, ok, err := id.TokenAccounts(testOwner, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, TokenAccounts{}, accounts)
}

func TestFungibleIdentity(t *testing.T) {
	id := Fungible(testMint)

	assert.False(t, id.IsNative())
	assert.Equal(t, testMint.Bytes(), id.Seed())
	assert.Equal(t, testMint.Bytes(), id.StakeSeed())

	mint, ok := id.Mint()
	require.True(t, ok)
	assert.Equal(t, testMint, mint)

	t.Run("derives associated token account", func(t *testing.T) {
		accounts, ok, err := id.TokenAccounts(testOwner, nil)
		require.NoError(t, err)
		require.True(t, ok)

		ata, err := pda.AssociatedTokenAccount(testOwner, testMint)
		require.NoError(t, err)
		assert.Equal(t, solana.TokenProgramID, accounts.TokenProgram)
		assert.Equal(t, ata.Address, accounts.TokenAccount)
	})

	t.Run("uses override", func(t *testing.T) {
		override := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
		accounts, ok, err := id.TokenAccounts(testOwner, &override)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, override, accounts.TokenAccount)
	})
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", testMint.String(), false},
		{"surrounding whitespace", "  " + testMint.String() + " ", false},
		{"empty", "", true},
		{"not base58", "0OIl", true},
		{"too short", "3mJr7AoUXx2Wqd", true},
		{"too long", testMint.String() + "11111", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseAddress("deposit_spl", "mint", tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tqerrors.ErrInvalidAddress)
				assert.Contains(t, err.Error(), "deposit_spl")
				assert.Contains(t, err.Error(), "mint")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testMint, key)
		})
	}
}

func TestParse(t *testing.T) {
	id, err := Parse("op", "")
	require.NoError(t, err)
	assert.True(t, id.IsNative())

	id, err = Parse("op", "SOL")
	require.NoError(t, err)
	assert.True(t, id.IsNative())

	id, err = Parse("op", testMint.String())
	require.NoError(t, err)
	assert.Equal(t, Fungible(testMint), id)

	_, err = Parse("op", "nope")
	assert.ErrorIs(t, err, tqerrors.ErrInvalidAddress)

	opt, err := ParseOptionalAddress("op", "token-account", "")
	require.NoError(t, err)
	assert.Nil(t, opt)
}
