package program

import (
	"github.com/gagliardetto/solana-go"
)

// NamedAccount is an instruction account tagged with its IDL name.
type NamedAccount struct {
	Name string
	Meta *solana.AccountMeta
}

// Accounts is implemented by the per-instruction account structs below.
// Field order in each struct is the order the program expects.
type Accounts interface {
	Operation() Operation
	Named() []NamedAccount
}

func signer(name string, key solana.PublicKey) NamedAccount {
	return NamedAccount{Name: name, Meta: solana.Meta(key).WRITE().SIGNER()}
}

func writable(name string, key solana.PublicKey) NamedAccount {
	return NamedAccount{Name: name, Meta: solana.Meta(key).WRITE()}
}

func readonly(name string, key solana.PublicKey) NamedAccount {
	return NamedAccount{Name: name, Meta: solana.Meta(key)}
}

type InitializeAccounts struct {
	State         solana.PublicKey
	Admin         solana.PublicKey
	SystemProgram solana.PublicKey
}

func (InitializeAccounts) Operation() Operation { return OpInitialize }

func (a InitializeAccounts) Named() []NamedAccount {
	return []NamedAccount{
		writable("state", a.State),
		signer("admin", a.Admin),
		readonly("systemProgram", a.SystemProgram),
	}
}

type DepositSolAccounts struct {
	User          solana.PublicKey
	Vault         solana.PublicKey
	Stake         solana.PublicKey
	State         solana.PublicKey
	SystemProgram solana.PublicKey
}

func (DepositSolAccounts) Operation() Operation { return OpDepositSol }

func (a DepositSolAccounts) Named() []NamedAccount {
	return []NamedAccount{
		signer("user", a.User),
		writable("vaultPda", a.Vault),
		writable("stakePda", a.Stake),
		readonly("state", a.State),
		readonly("systemProgram", a.SystemProgram),
	}
}

type DepositSplAccounts struct {
	User             solana.PublicKey
	UserTokenAccount solana.PublicKey
	Mint             solana.PublicKey
	Vault            solana.PublicKey
	Stake            solana.PublicKey
	State            solana.PublicKey
	TokenProgram     solana.PublicKey
	SystemProgram    solana.PublicKey
}

func (DepositSplAccounts) Operation() Operation { return OpDepositSpl }

func (a DepositSplAccounts) Named() []NamedAccount {
	return []NamedAccount{
		signer("user", a.User),
		writable("userTokenAccount", a.UserTokenAccount),
		readonly("mint", a.Mint),
		writable("vaultPda", a.Vault),
		writable("stakePda", a.Stake),
		readonly("state", a.State),
		readonly("tokenProgram", a.TokenProgram),
		readonly("systemProgram", a.SystemProgram),
	}
}

type WithdrawSolAccounts struct {
	User          solana.PublicKey
	Stake         solana.PublicKey
	Vault         solana.PublicKey
	Fee           solana.PublicKey
	State         solana.PublicKey
	Clock         solana.PublicKey
	SystemProgram solana.PublicKey
}

func (WithdrawSolAccounts) Operation() Operation { return OpWithdrawSol }

func (a WithdrawSolAccounts) Named() []NamedAccount {
	return []NamedAccount{
		signer("user", a.User),
		writable("stakePda", a.Stake),
		writable("vaultPda", a.Vault),
		writable("feePda", a.Fee),
		readonly("state", a.State),
		readonly("clock", a.Clock),
		readonly("systemProgram", a.SystemProgram),
	}
}

type WithdrawSplAccounts struct {
	User             solana.PublicKey
	Stake            solana.PublicKey
	Mint             solana.PublicKey
	Vault            solana.PublicKey
	UserTokenAccount solana.PublicKey
	Fee              solana.PublicKey
	State            solana.PublicKey
	Clock            solana.PublicKey
	TokenProgram     solana.PublicKey
	SystemProgram    solana.PublicKey
}

func (WithdrawSplAccounts) Operation() Operation { return OpWithdrawSpl }

func (a WithdrawSplAccounts) Named() []NamedAccount {
	return []NamedAccount{
		signer("user", a.User),
		writable("stakePda", a.Stake),
		readonly("mint", a.Mint),
		writable("vaultPda", a.Vault),
		writable("userTokenAccount", a.UserTokenAccount),
		writable("feePda", a.Fee),
		readonly("state", a.State),
		readonly("clock", a.Clock),
		readonly("tokenProgram", a.TokenProgram),
		readonly("systemProgram", a.SystemProgram),
	}
}

type WithdrawFeesSolAccounts struct {
	Admin         solana.PublicKey
	Fee           solana.PublicKey
	State         solana.PublicKey
	SystemProgram solana.PublicKey
}

func (WithdrawFeesSolAccounts) Operation() Operation { return OpWithdrawFeesSol }

func (a WithdrawFeesSolAccounts) Named() []NamedAccount {
	return []NamedAccount{
		signer("admin", a.Admin),
		writable("feePda", a.Fee),
		readonly("state", a.State),
		readonly("systemProgram", a.SystemProgram),
	}
}

type WithdrawFeesSplAccounts struct {
	Admin             solana.PublicKey
	Mint              solana.PublicKey
	Fee               solana.PublicKey
	AdminTokenAccount solana.PublicKey
	State             solana.PublicKey
	TokenProgram      solana.PublicKey
}

func (WithdrawFeesSplAccounts) Operation() Operation { return OpWithdrawFeesSpl }

func (a WithdrawFeesSplAccounts) Named() []NamedAccount {
	return []NamedAccount{
		signer("admin", a.Admin),
		readonly("mint", a.Mint),
		writable("feePda", a.Fee),
		writable("adminTokenAccount", a.AdminTokenAccount),
		readonly("state", a.State),
		readonly("tokenProgram", a.TokenProgram),
	}
}

// Compile-time checks that every instruction has an account shape.
var (
	_ Accounts = InitializeAccounts{}
	_ Accounts = DepositSolAccounts{}
	_ Accounts = DepositSplAccounts{}
	_ Accounts = WithdrawSolAccounts{}
	_ Accounts = WithdrawSplAccounts{}
	_ Accounts = WithdrawFeesSolAccounts{}
	_ Accounts = WithdrawFeesSplAccounts{}
)
