// Package pda derives the token_quest program accounts.
//
// Every account the program owns is a program-derived address computed from
// the program id and a fixed seed tuple:
//
//	state  ["state"]
//	vault  ["vault", assetSeed]
//	stake  ["stake", user]              (SOL)
//	stake  ["stake", user, mint]        (SPL)
//	fee    ["fee",   assetSeed]
//
// assetSeed is "sol" for the native asset and the raw mint bytes otherwise.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/token-quest-client/stakingClient/constant"
	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
)

const (
	// MaxSeedLength is the per-seed byte limit of the derivation scheme.
	MaxSeedLength = 32
	// MaxSeeds is the seed count limit, bump included.
	MaxSeeds = 16
)

// Account is a derived address and the bump that moves it off the curve.
type Account struct {
	Address solana.PublicKey
	Bump    uint8
}

func (a Account) String() string {
	return fmt.Sprintf("%s (bump %d)", a.Address, a.Bump)
}

// Deriver derives addresses owned by a single program. The zero value is not
// usable; construct with NewDeriver.
type Deriver struct {
	programID solana.PublicKey
}

// NewDeriver returns a Deriver bound to programID.
func NewDeriver(programID solana.PublicKey) Deriver {
	return Deriver{programID: programID}
}

// ProgramID returns the program the deriver is bound to.
func (d Deriver) ProgramID() solana.PublicKey { return d.programID }

// Derive returns the program address for seeds. It is deterministic and has
// no side effects.
func (d Deriver) Derive(seeds ...[]byte) (Account, error) {
	if len(seeds)+1 > MaxSeeds {
		return Account{}, tqerrors.NewSeedTooLong(fmt.Sprintf("%d seeds given, at most %d allowed", len(seeds), MaxSeeds-1))
	}
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Account{}, tqerrors.NewSeedTooLong(fmt.Sprintf("seed %d is %d bytes, limit is %d", i, len(seed), MaxSeedLength))
		}
	}

	// FindProgramAddress appends the bump to the slice it is given
	owned := make([][]byte, len(seeds), len(seeds)+1)
	copy(owned, seeds)

	address, bump, err := solana.FindProgramAddress(owned, d.programID)
	if err != nil {
		return Account{}, tqerrors.NewDerivationExhausted(err)
	}
	return Account{Address: address, Bump: bump}, nil
}

// State derives the singleton configuration account.
func (d Deriver) State() (Account, error) {
	return d.Derive(constant.SeedState)
}

// Vault derives the custody pool for the asset identified by assetSeed.
func (d Deriver) Vault(assetSeed []byte) (Account, error) {
	return d.Derive(constant.SeedVault, assetSeed)
}

// Fee derives the fee pool for the asset identified by assetSeed.
func (d Deriver) Fee(assetSeed []byte) (Account, error) {
	return d.Derive(constant.SeedFee, assetSeed)
}

// Stake derives the deposit record of user. For SOL the asset seed is
// omitted, so pass nil; token stakes pass the mint bytes.
func (d Deriver) Stake(user solana.PublicKey, assetSeed []byte) (Account, error) {
	if assetSeed == nil {
		return d.Derive(constant.SeedStake, user.Bytes())
	}
	return d.Derive(constant.SeedStake, user.Bytes(), assetSeed)
}

// AssociatedTokenAccount derives the canonical token account of owner for mint.
func AssociatedTokenAccount(owner, mint solana.PublicKey) (Account, error) {
	address, bump, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return Account{}, tqerrors.NewDerivationExhausted(err)
	}
	return Account{Address: address, Bump: bump}, nil
}
