package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pushchain/token-quest-client/stakingClient/builder"
	"github.com/pushchain/token-quest-client/stakingClient/chains/svm"
	"github.com/pushchain/token-quest-client/stakingClient/config"
	"github.com/pushchain/token-quest-client/stakingClient/constant"
	"github.com/pushchain/token-quest-client/stakingClient/db"
	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
	"github.com/pushchain/token-quest-client/stakingClient/keys"
	"github.com/pushchain/token-quest-client/stakingClient/logger"
	"github.com/pushchain/token-quest-client/stakingClient/metrics"
	"github.com/pushchain/token-quest-client/stakingClient/staking"
)

// app is the wired client for one command invocation.
type app struct {
	flags   *globalFlags
	cfg     config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics
	builder *builder.Builder
	wallet  solana.PrivateKey
	rpc     *svm.RPCClient
	journal *db.DB
	service *staking.Service
}

// appOptions selects which collaborators a command needs.
type appOptions struct {
	wallet         bool // load the keypair
	optionalWallet bool // load the keypair if it exists
	readOnly       bool // never submit; the service only derives and reads
	network        bool // connect to RPC endpoints
	journal        bool // open the submission journal
}

func exitCode(err error) int {
	if tqerrors.IsConstructionError(err) {
		return 2
	}
	return 1
}

// loadConfig reads the config file under --home and applies TQ_* environment
// variables, then command line flags, on top of it.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (config.Config, error) {
	cfg, err := config.LoadOrDefault(flags.home)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}

	pf := cmd.Flags()
	if pf.Changed("rpc-url") {
		cfg.RPCURLs = flags.rpcURLs
	}
	if pf.Changed("keypair") {
		cfg.KeypairPath = flags.keypair
	}
	if pf.Changed("program-id") {
		cfg.ProgramID = flags.programID
	}
	if pf.Changed("log-level") {
		level, err := logger.ParseLevel(flags.logLevel)
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid --log-level: %w", err)
		}
		cfg.LogLevel = level
	}
	if pf.Changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}
	if cfg.NodeHome == "" {
		cfg.NodeHome = flags.home
	}

	if err := config.Validate(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, flags *globalFlags, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}

	a := &app{
		flags:   flags,
		cfg:     cfg,
		logger:  logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, cfg.LogSampler),
		metrics: metrics.New(),
	}

	programID, err := cfg.ProgramPublicKey()
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	a.builder = builder.New(programID)

	if opts.wallet || opts.optionalWallet {
		if err := a.loadWallet(opts.optionalWallet); err != nil {
			return nil, err
		}
	}

	if opts.network {
		a.rpc, err = svm.NewRPCClient(cmd.Context(), cfg.RPCURLs, cfg.ExpectedGenesisHash, a.logger)
		if err != nil {
			return nil, err
		}
	}

	if opts.journal && !cfg.JournalDisabled {
		if err := a.openJournal(); err != nil {
			a.Close()
			return nil, err
		}
	}

	if err := a.wireService(opts.readOnly); err != nil {
		a.Close()
		return nil, err
	}

	a.logger.Debug().
		Str("program_id", programID.String()).
		Str("home", flags.home).
		Bool("dry_run", flags.dryRun).
		Msg("client initialized")

	return a, nil
}

func (a *app) loadWallet(optional bool) error {
	path := a.cfg.ResolveKeypairPath(a.flags.home)
	wallet, err := keys.LoadKeypair(path)
	if err != nil {
		if optional {
			a.logger.Debug().Err(err).Msg("no wallet available")
			return nil
		}
		return err
	}
	if err := keys.CheckPermissions(path); err != nil {
		a.logger.Warn().Err(err).Msg("keypair file is not private")
	}
	a.wallet = wallet
	return nil
}

func (a *app) openJournal() error {
	dir := filepath.Join(a.flags.home, constant.DatabasesSubdir)
	journal, err := db.OpenFileDB(dir, constant.JournalFileName, true)
	if err != nil {
		return fmt.Errorf("failed to open submission journal: %w", err)
	}
	a.journal = journal

	deleted, err := journal.DeleteSubmissionsOlderThan(a.cfg.JournalRetention())
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to prune submission journal")
	} else if deleted > 0 {
		a.logger.Debug().Int64("deleted", deleted).Msg("pruned submission journal")
	}
	return nil
}

// wireService builds the staking service. A read-only or dry-run service has
// no submitter and may have no wallet.
func (a *app) wireService(readOnly bool) error {
	dryRun := a.flags.dryRun || readOnly
	opts := []staking.Option{
		staking.WithMetrics(a.metrics),
		staking.WithDryRun(dryRun),
	}
	if a.journal != nil {
		opts = append(opts, staking.WithJournal(a.journal))
	}
	if a.rpc != nil {
		opts = append(opts, staking.WithAccountReader(a.rpc))
	}

	var (
		submitter staking.Submitter
		signer    solana.PublicKey
	)
	if a.wallet != nil {
		signer = a.wallet.PublicKey()
	}
	if a.rpc != nil && a.wallet != nil && !dryRun {
		s, err := svm.NewSubmitter(a.rpc, a.wallet, svm.SubmitterConfig{
			Commitment:          rpc.CommitmentType(a.cfg.Commitment),
			ConfirmationTimeout: a.cfg.ConfirmationTimeout(),
			PollInterval:        a.cfg.PollInterval(),
			SkipPreflight:       a.cfg.SkipPreflight,
			ComputeUnitLimit:    a.cfg.ComputeUnitLimit,
			ComputeUnitPrice:    a.cfg.ComputeUnitPrice,
		}, a.logger)
		if err != nil {
			return err
		}
		submitter = s
		signer = s.Identity()
	}

	service, err := staking.NewService(a.builder, submitter, signer, a.logger, opts...)
	if err != nil {
		return err
	}
	a.service = service
	return nil
}

// finish prints metrics when requested.
func (a *app) finish(cmd *cobra.Command) error {
	if !a.flags.printMetrics {
		return nil
	}
	return a.metrics.WriteText(cmd.OutOrStdout())
}

func (a *app) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close submission journal")
		}
	}
	if a.rpc != nil {
		a.rpc.Close()
	}
}

// runWithApp wires an app for cmd, runs fn and prints metrics.
func runWithApp(cmd *cobra.Command, flags *globalFlags, opts appOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd, flags, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(cmd.Context(), a); err != nil {
		_ = a.finish(cmd)
		return err
	}
	return a.finish(cmd)
}
