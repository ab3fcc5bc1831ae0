package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"github.com/pushchain/token-quest-client/stakingClient/constant"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if cfg.ProgramID == "" {
		cfg.ProgramID = constant.DefaultProgramID.String()
	}
	if _, err := solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
		return fmt.Errorf("program id %q is not a valid address: %w", cfg.ProgramID, err)
	}

	if len(cfg.RPCURLs) == 0 {
		var defaultCfg Config
		if err := json.Unmarshal(defaultConfigJSON, &defaultCfg); err == nil {
			cfg.RPCURLs = defaultCfg.RPCURLs
		}
	}

	// Set defaults for submission config
	if cfg.Commitment == "" {
		cfg.Commitment = CommitmentConfirmed
	}
	switch cfg.Commitment {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
	default:
		return fmt.Errorf("commitment must be 'processed', 'confirmed' or 'finalized'")
	}
	if cfg.ConfirmationTimeoutSeconds < 0 || cfg.PollIntervalMillis < 0 {
		return fmt.Errorf("confirmation timeout and poll interval must not be negative")
	}
	if cfg.ConfirmationTimeoutSeconds == 0 {
		cfg.ConfirmationTimeoutSeconds = 60
	}
	if cfg.PollIntervalMillis == 0 {
		cfg.PollIntervalMillis = 500
	}

	// Set defaults for the journal
	if cfg.JournalRetentionHours < 0 {
		return fmt.Errorf("journal retention must not be negative")
	}
	if cfg.JournalRetentionHours == 0 {
		cfg.JournalRetentionHours = 720
	}

	return nil
}

// Validate checks cfg and fills in defaults for unset fields.
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

// ProgramPublicKey returns the configured program id.
func (c *Config) ProgramPublicKey() (solana.PublicKey, error) {
	if c.ProgramID == "" {
		return constant.DefaultProgramID, nil
	}
	return solana.PublicKeyFromBase58(c.ProgramID)
}

// ResolveKeypairPath returns the keypair path, defaulting to <home>/keys/id.json.
func (c *Config) ResolveKeypairPath(basePath string) string {
	if c.KeypairPath != "" {
		return c.KeypairPath
	}
	return filepath.Join(basePath, constant.KeysSubdir, constant.KeypairFileName)
}

// Save writes the given config to <NodeDir>/config/tqclient_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, constant.ConfigSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, constant.ConfigFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads and returns the config from <BasePath>/config/tqclient_config.json.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, constant.ConfigSubdir, constant.ConfigFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config file under basePath, falling back to the
// embedded defaults when none exists yet.
func LoadOrDefault(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, constant.ConfigSubdir, constant.ConfigFileName)
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		cfg, err := LoadDefaultConfig()
		if err != nil {
			return Config{}, err
		}
		return *cfg, nil
	}
	return Load(basePath)
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg with TQ_* environment variables, e.g.
// TQ_RPC_URLS="https://a,https://b" or TQ_PROGRAM_ID=<base58>.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(constant.EnvPrefix)
	v.AutomaticEnv()

	for _, key := range []string{
		"log_level", "log_format", "log_sampler", "program_id", "rpc_urls", "expected_genesis_hash",
		"commitment", "confirmation_timeout_seconds", "poll_interval_millis",
		"skip_preflight", "compute_unit_limit", "compute_unit_price", "keypair_path",
		"journal_disabled", "journal_retention_hours",
	} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetInt("log_level")
	}
	if v.IsSet("log_format") {
		cfg.LogFormat = v.GetString("log_format")
	}
	if v.IsSet("log_sampler") {
		cfg.LogSampler = v.GetBool("log_sampler")
	}
	if v.IsSet("program_id") {
		cfg.ProgramID = v.GetString("program_id")
	}
	if v.IsSet("rpc_urls") {
		cfg.RPCURLs = splitList(v.GetString("rpc_urls"))
	}
	if v.IsSet("expected_genesis_hash") {
		cfg.ExpectedGenesisHash = v.GetString("expected_genesis_hash")
	}
	if v.IsSet("commitment") {
		cfg.Commitment = v.GetString("commitment")
	}
	if v.IsSet("confirmation_timeout_seconds") {
		cfg.ConfirmationTimeoutSeconds = v.GetInt("confirmation_timeout_seconds")
	}
	if v.IsSet("poll_interval_millis") {
		cfg.PollIntervalMillis = v.GetInt("poll_interval_millis")
	}
	if v.IsSet("skip_preflight") {
		cfg.SkipPreflight = v.GetBool("skip_preflight")
	}
	if v.IsSet("compute_unit_limit") {
		cfg.ComputeUnitLimit = v.GetUint32("compute_unit_limit")
	}
	if v.IsSet("compute_unit_price") {
		cfg.ComputeUnitPrice = v.GetUint64("compute_unit_price")
	}
	if v.IsSet("keypair_path") {
		cfg.KeypairPath = v.GetString("keypair_path")
	}
	if v.IsSet("journal_disabled") {
		cfg.JournalDisabled = v.GetBool("journal_disabled")
	}
	if v.IsSet("journal_retention_hours") {
		cfg.JournalRetentionHours = v.GetInt("journal_retention_hours")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
