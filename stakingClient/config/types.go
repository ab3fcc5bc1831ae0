package config

import "time"

// Commitment levels accepted in the config.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Client home directory (default: ~/.tqclient)
	NodeHome string `json:"node_home"`

	// Program deployment
	ProgramID string `json:"program_id"` // base58 program id (default: the deployed token_quest program)

	// Solana RPC configuration
	RPCURLs             []string `json:"rpc_urls"`              // Reads fail over across endpoints; sends use one
	ExpectedGenesisHash string   `json:"expected_genesis_hash"` // Endpoints on another cluster are skipped; empty disables the check

	// Submission configuration
	Commitment                 string `json:"commitment"`                   // "processed", "confirmed" or "finalized" (default: confirmed)
	ConfirmationTimeoutSeconds int    `json:"confirmation_timeout_seconds"` // How long to wait for confirmation (default: 60)
	PollIntervalMillis         int    `json:"poll_interval_millis"`         // Signature status poll interval (default: 500)
	SkipPreflight              bool   `json:"skip_preflight"`               // Skip the RPC node's simulation before sending
	ComputeUnitLimit           uint32 `json:"compute_unit_limit"`           // 0 leaves the runtime default
	ComputeUnitPrice           uint64 `json:"compute_unit_price"`           // Priority fee in micro-lamports per unit, 0 for none

	// Wallet
	KeypairPath string `json:"keypair_path"` // Solana CLI keypair file (default: <home>/keys/id.json)

	// Submission journal
	JournalDisabled       bool `json:"journal_disabled"`
	JournalRetentionHours int  `json:"journal_retention_hours"` // Finished entries older than this are pruned (default: 720)
}

// ConfirmationTimeout returns the confirmation timeout as a duration.
func (c *Config) ConfirmationTimeout() time.Duration {
	return time.Duration(c.ConfirmationTimeoutSeconds) * time.Second
}

// PollInterval returns the status poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// JournalRetention returns the journal retention period as a duration.
func (c *Config) JournalRetention() time.Duration {
	return time.Duration(c.JournalRetentionHours) * time.Hour
}
