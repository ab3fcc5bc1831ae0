// Package asset distinguishes native SOL from SPL tokens when deriving
// accounts and assembling instructions.
package asset

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/pushchain/token-quest-client/stakingClient/constant"
	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
	"github.com/pushchain/token-quest-client/stakingClient/pda"
)

// addressLength is the size of an ed25519 public key.
const addressLength = 32

// Identity is either the native asset or a fungible token mint.
type Identity struct {
	mint     solana.PublicKey
	fungible bool
}

// Native returns the identity of SOL.
func Native() Identity {
	return Identity{}
}

// Fungible returns the identity of the token minted by mint.
func Fungible(mint solana.PublicKey) Identity {
	return Identity{mint: mint, fungible: true}
}

// IsNative reports whether the identity is SOL.
func (id Identity) IsNative() bool { return !id.fungible }

// Mint returns the token mint; ok is false for SOL.
func (id Identity) Mint() (mint solana.PublicKey, ok bool) {
	return id.mint, id.fungible
}

// Seed returns the seed fragment appended to vault, fee and token stake seeds.
func (id Identity) Seed() []byte {
	if !id.fungible {
		return constant.SeedNative
	}
	return id.mint.Bytes()
}

// StakeSeed returns the asset seed for the stake record, which is nil for
// SOL: native stakes are keyed by user alone.
func (id Identity) StakeSeed() []byte {
	if !id.fungible {
		return nil
	}
	return id.mint.Bytes()
}

func (id Identity) String() string {
	if !id.fungible {
		return "sol"
	}
	return id.mint.String()
}

// TokenAccounts are the extra accounts a token instruction references.
type TokenAccounts struct {
	TokenProgram solana.PublicKey
	TokenAccount solana.PublicKey
}

// TokenAccounts returns the token program and owner's token account for a
// fungible identity. override, when non-nil, is used as the token account;
// otherwise the associated token account of owner is derived. ok is false
// for SOL, which needs no extra accounts.
func (id Identity) TokenAccounts(owner solana.PublicKey, override *solana.PublicKey) (accounts TokenAccounts, ok bool, err error) {
	if !id.fungible {
		return TokenAccounts{}, false, nil
	}
	accounts.TokenProgram = constant.TokenProgramID
	if override != nil {
		accounts.TokenAccount = *override
		return accounts, true, nil
	}
	ata, err := pda.AssociatedTokenAccount(owner, id.mint)
	if err != nil {
		return TokenAccounts{}, false, err
	}
	accounts.TokenAccount = ata.Address
	return accounts, true, nil
}

// ParseAddress decodes a base58 address, failing with InvalidAddress unless it
// decodes to exactly 32 bytes. field names the argument in the error.
func ParseAddress(operation, field, s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, tqerrors.NewInvalidAddress(operation, field, fmt.Errorf("empty"))
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return solana.PublicKey{}, tqerrors.NewInvalidAddress(operation, field, err)
	}
	if len(raw) != addressLength {
		return solana.PublicKey{}, tqerrors.NewInvalidAddress(operation, field, fmt.Errorf("decoded to %d bytes, want %d", len(raw), addressLength))
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// ParseOptionalAddress is ParseAddress for flags that may be left empty.
func ParseOptionalAddress(operation, field, s string) (*solana.PublicKey, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	key, err := ParseAddress(operation, field, s)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// Parse returns Native for "" or "sol" and a fungible identity otherwise.
func Parse(operation, s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "sol") {
		return Native(), nil
	}
	mint, err := ParseAddress(operation, "mint", s)
	if err != nil {
		return Identity{}, err
	}
	return Fungible(mint), nil
}
