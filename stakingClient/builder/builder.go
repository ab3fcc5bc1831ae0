// Package builder resolves every account an instruction needs and produces a
// Request ready for submission. It performs the local precondition checks
// (amount range, address syntax) and never touches the network.
package builder

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/pushchain/token-quest-client/stakingClient/asset"
	"github.com/pushchain/token-quest-client/stakingClient/constant"
	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
	"github.com/pushchain/token-quest-client/stakingClient/pda"
	"github.com/pushchain/token-quest-client/stakingClient/program"
)

// Builder assembles requests for one program deployment. It is immutable and
// safe for concurrent use.
type Builder struct {
	deriver pda.Deriver
}

// New returns a Builder for programID.
func New(programID solana.PublicKey) *Builder {
	return &Builder{deriver: pda.NewDeriver(programID)}
}

// Deriver exposes the address deriver the builder uses.
func (b *Builder) Deriver() pda.Deriver { return b.deriver }

// ValidateAmount checks that amount is in (0, MaxUint64] and returns it as
// the u64 the program takes.
func ValidateAmount(op program.Operation, amount sdkmath.Int) (uint64, error) {
	switch {
	case amount.IsNil():
		return 0, tqerrors.NewInvalidAmount(op.Name(), "amount is required")
	case !amount.IsPositive():
		return 0, tqerrors.NewInvalidAmount(op.Name(), fmt.Sprintf("amount must be positive, got %s", amount))
	case !amount.IsUint64():
		return 0, tqerrors.NewInvalidAmount(op.Name(), fmt.Sprintf("amount %s exceeds the maximum of 18446744073709551615", amount))
	}
	return amount.Uint64(), nil
}

func requireAddress(op program.Operation, field string, key solana.PublicKey) error {
	if key == (solana.PublicKey{}) {
		return tqerrors.NewInvalidAddress(op.Name(), field, fmt.Errorf("zero address"))
	}
	return nil
}

func (b *Builder) request(accounts program.Accounts, signer solana.PublicKey, amount uint64) *Request {
	return &Request{
		ProgramID: b.deriver.ProgramID(),
		Operation: accounts.Operation(),
		Accounts:  accounts.Named(),
		Amount:    amount,
		Signer:    signer,
	}
}

// pools derives the state account and the vault and fee pools of id.
func (b *Builder) pools(id asset.Identity) (state, vault, fee pda.Account, err error) {
	if state, err = b.deriver.State(); err != nil {
		return
	}
	if vault, err = b.deriver.Vault(id.Seed()); err != nil {
		return
	}
	fee, err = b.deriver.Fee(id.Seed())
	return
}

func (b *Builder) tokenAccounts(op program.Operation, id asset.Identity, owner solana.PublicKey, tokenAccount *solana.PublicKey, field string) (solana.PublicKey, error) {
	if tokenAccount != nil {
		if err := requireAddress(op, field, *tokenAccount); err != nil {
			return solana.PublicKey{}, err
		}
	}
	accounts, _, err := id.TokenAccounts(owner, tokenAccount)
	if err != nil {
		return solana.PublicKey{}, tqerrors.ForOperation(err, op.Name())
	}
	return accounts.TokenAccount, nil
}

// Initialize builds the request creating the state account with admin as
// the protocol administrator.
func (b *Builder) Initialize(admin solana.PublicKey) (*Request, error) {
	op := program.OpInitialize
	if err := requireAddress(op, "admin", admin); err != nil {
		return nil, err
	}
	state, err := b.deriver.State()
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}
	return b.request(program.InitializeAccounts{
		State:         state.Address,
		Admin:         admin,
		SystemProgram: constant.SystemProgramID,
	}, admin, 0), nil
}

// DepositNative builds a SOL deposit of amount lamports into the vault.
func (b *Builder) DepositNative(user solana.PublicKey, amount sdkmath.Int) (*Request, error) {
	op := program.OpDepositSol
	lamports, err := ValidateAmount(op, amount)
	if err != nil {
		return nil, err
	}
	if err := requireAddress(op, "user", user); err != nil {
		return nil, err
	}

	id := asset.Native()
	state, vault, _, err := b.pools(id)
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}
	stake, err := b.deriver.Stake(user, id.StakeSeed())
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}

	return b.request(program.DepositSolAccounts{
		User:          user,
		Vault:         vault.Address,
		Stake:         stake.Address,
		State:         state.Address,
		SystemProgram: constant.SystemProgramID,
	}, user, lamports), nil
}

// DepositAsset builds a token deposit of amount base units of mint. When
// userTokenAccount is nil the user's associated token account is used.
func (b *Builder) DepositAsset(user, mint solana.PublicKey, userTokenAccount *solana.PublicKey, amount sdkmath.Int) (*Request, error) {
	op := program.OpDepositSpl
	units, err := ValidateAmount(op, amount)
	if err != nil {
		return nil, err
	}
	if err := requireAddress(op, "user", user); err != nil {
		return nil, err
	}
	if err := requireAddress(op, "mint", mint); err != nil {
		return nil, err
	}

	id := asset.Fungible(mint)
	tokenAccount, err := b.tokenAccounts(op, id, user, userTokenAccount, "userTokenAccount")
	if err != nil {
		return nil, err
	}
	state, vault, _, err := b.pools(id)
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}
	stake, err := b.deriver.Stake(user, id.StakeSeed())
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}

	return b.request(program.DepositSplAccounts{
		User:             user,
		UserTokenAccount: tokenAccount,
		Mint:             mint,
		Vault:            vault.Address,
		Stake:            stake.Address,
		State:            state.Address,
		TokenProgram:     constant.TokenProgramID,
		SystemProgram:    constant.SystemProgramID,
	}, user, units), nil
}

// WithdrawNative builds the withdrawal of the user's SOL stake.
func (b *Builder) WithdrawNative(user solana.PublicKey) (*Request, error) {
	op := program.OpWithdrawSol
	if err := requireAddress(op, "user", user); err != nil {
		return nil, err
	}

	id := asset.Native()
	state, vault, fee, err := b.pools(id)
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}
	stake, err := b.deriver.Stake(user, id.StakeSeed())
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}

	return b.request(program.WithdrawSolAccounts{
		User:          user,
		Stake:         stake.Address,
		Vault:         vault.Address,
		Fee:           fee.Address,
		State:         state.Address,
		Clock:         constant.SysVarClock,
		SystemProgram: constant.SystemProgramID,
	}, user, 0), nil
}

// WithdrawAsset builds the withdrawal of the user's stake in mint.
func (b *Builder) WithdrawAsset(user, mint solana.PublicKey, userTokenAccount *solana.PublicKey) (*Request, error) {
	op := program.OpWithdrawSpl
	if err := requireAddress(op, "user", user); err != nil {
		return nil, err
	}
	if err := requireAddress(op, "mint", mint); err != nil {
		return nil, err
	}

	id := asset.Fungible(mint)
	tokenAccount, err := b.tokenAccounts(op, id, user, userTokenAccount, "userTokenAccount")
	if err != nil {
		return nil, err
	}
	state, vault, fee, err := b.pools(id)
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}
	stake, err := b.deriver.Stake(user, id.StakeSeed())
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}

	return b.request(program.WithdrawSplAccounts{
		User:             user,
		Stake:            stake.Address,
		Mint:             mint,
		Vault:            vault.Address,
		UserTokenAccount: tokenAccount,
		Fee:              fee.Address,
		State:            state.Address,
		Clock:            constant.SysVarClock,
		TokenProgram:     constant.TokenProgramID,
		SystemProgram:    constant.SystemProgramID,
	}, user, 0), nil
}

// WithdrawFeesNative builds the admin withdrawal of the SOL fee pool.
func (b *Builder) WithdrawFeesNative(admin solana.PublicKey) (*Request, error) {
	op := program.OpWithdrawFeesSol
	if err := requireAddress(op, "admin", admin); err != nil {
		return nil, err
	}

	state, _, fee, err := b.pools(asset.Native())
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}

	return b.request(program.WithdrawFeesSolAccounts{
		Admin:         admin,
		Fee:           fee.Address,
		State:         state.Address,
		SystemProgram: constant.SystemProgramID,
	}, admin, 0), nil
}

// WithdrawFeesAsset builds the admin withdrawal of the fee pool of mint.
func (b *Builder) WithdrawFeesAsset(admin, mint solana.PublicKey, adminTokenAccount *solana.PublicKey) (*Request, error) {
	op := program.OpWithdrawFeesSpl
	if err := requireAddress(op, "admin", admin); err != nil {
		return nil, err
	}
	if err := requireAddress(op, "mint", mint); err != nil {
		return nil, err
	}

	id := asset.Fungible(mint)
	tokenAccount, err := b.tokenAccounts(op, id, admin, adminTokenAccount, "adminTokenAccount")
	if err != nil {
		return nil, err
	}
	state, _, fee, err := b.pools(id)
	if err != nil {
		return nil, tqerrors.ForOperation(err, op.Name())
	}

	return b.request(program.WithdrawFeesSplAccounts{
		Admin:             admin,
		Mint:              mint,
		Fee:               fee.Address,
		AdminTokenAccount: tokenAccount,
		State:             state.Address,
		TokenProgram:      constant.TokenProgramID,
	}, admin, 0), nil
}

// Addresses is the set of program accounts relevant to one user and asset.
type Addresses struct {
	Program solana.PublicKey
	Asset   asset.Identity
	State   pda.Account
	Vault   pda.Account
	Fee     pda.Account
	// Stake is only set when a user was given.
	Stake *pda.Account
}

// Addresses derives the state, vault, fee and (when user is non-nil) stake
// accounts for id.
func (b *Builder) Addresses(id asset.Identity, user *solana.PublicKey) (*Addresses, error) {
	state, vault, fee, err := b.pools(id)
	if err != nil {
		return nil, err
	}
	out := &Addresses{
		Program: b.deriver.ProgramID(),
		Asset:   id,
		State:   state,
		Vault:   vault,
		Fee:     fee,
	}
	if user != nil {
		stake, err := b.deriver.Stake(*user, id.StakeSeed())
		if err != nil {
			return nil, err
		}
		out.Stake = &stake
	}
	return out, nil
}
