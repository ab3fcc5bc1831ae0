package constant

import (
	"os"

	"github.com/gagliardetto/solana-go"
)

// <NodeDir>/                    (e.g., /home/user/.tqclient)
// └── config/
//	└── tqclient_config.json
// └── databases/
//	└── journal.db
// └── keys/
//	└── id.json

const (
	NodeDir = ".tqclient"

	ConfigSubdir   = "config"
	ConfigFileName = "tqclient_config.json"

	DatabasesSubdir = "databases"
	JournalFileName = "journal.db"

	KeysSubdir      = "keys"
	KeypairFileName = "id.json"

	// EnvPrefix is the prefix for environment overrides (TQ_RPC_URLS, ...).
	EnvPrefix = "TQ"
)

var DefaultNodeHome = os.ExpandEnv("$HOME/") + NodeDir

// DefaultProgramID is the deployed token_quest program.
var DefaultProgramID = solana.MustPublicKeyFromBase58("7Sowe2d6E9sZjZ4Tz35xo68KSKbo8LJi1c7MDm42vkoc")

// Seeds used by the program's account constraints.
var (
	SeedState = []byte("state")
	SeedVault = []byte("vault")
	SeedStake = []byte("stake")
	SeedFee   = []byte("fee")

	// SeedNative is the asset seed used for SOL in place of a mint.
	SeedNative = []byte("sol")
)

// Well-known program and sysvar accounts referenced by the instructions.
var (
	SystemProgramID = solana.SystemProgramID
	TokenProgramID  = solana.TokenProgramID
	SysVarClock     = solana.SysVarClockPubkey

	ComputeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
)
