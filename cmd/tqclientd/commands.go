package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	sdkmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/pushchain/token-quest-client/stakingClient/asset"
	"github.com/pushchain/token-quest-client/stakingClient/builder"
	"github.com/pushchain/token-quest-client/stakingClient/config"
	"github.com/pushchain/token-quest-client/stakingClient/constant"
	tqerrors "github.com/pushchain/token-quest-client/stakingClient/errors"
	"github.com/pushchain/token-quest-client/stakingClient/keys"
	"github.com/pushchain/token-quest-client/stakingClient/program"
	"github.com/pushchain/token-quest-client/stakingClient/staking"
)

// Set at build time with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = ""
)

func InitRootCmd(rootCmd *cobra.Command, flags *globalFlags) {
	rootCmd.AddCommand(
		initializeCmd(flags),
		depositCmd(flags, false),
		depositCmd(flags, true),
		withdrawCmd(flags, false),
		withdrawCmd(flags, true),
		withdrawFeesCmd(flags, false),
		withdrawFeesCmd(flags, true),
		addressesCmd(flags),
		historyCmd(flags),
		initConfigCmd(flags),
		versionCmd(),
	)
}

// operationFn runs one staking operation on a wired service.
type operationFn func(ctx context.Context, s *staking.Service) (*staking.Result, error)

// runOperation wires the client, runs op and prints its result. Inputs must
// already be validated so that bad input never reaches the network.
func runOperation(cmd *cobra.Command, flags *globalFlags, outputFormat string, op operationFn) error {
	// Checked first: the operation is not idempotent, so it must not run when
	// its result cannot be printed.
	if err := checkOutputFormat(outputFormat); err != nil {
		return err
	}

	opts := appOptions{wallet: true, network: !flags.dryRun, journal: true}
	return runWithApp(cmd, flags, opts, func(ctx context.Context, a *app) error {
		res, err := op(ctx, a.service)
		if err != nil {
			return err
		}
		out, err := newResultOutput(res)
		if err != nil {
			return err
		}
		return printOutput(cmd.OutOrStdout(), out, outputFormat)
	})
}

func parseAmount(op program.Operation, s string) (sdkmath.Int, error) {
	if s == "" {
		return sdkmath.Int{}, tqerrors.NewInvalidAmount(op.Name(), "--amount is required")
	}
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, tqerrors.NewInvalidAmount(op.Name(), fmt.Sprintf("%q is not an integer amount", s))
	}
	if _, err := builder.ValidateAmount(op, amount); err != nil {
		return sdkmath.Int{}, err
	}
	return amount, nil
}

func addOutputFlag(cmd *cobra.Command, outputFormat *string) {
	cmd.Flags().StringVarP(outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
}

// assetFlags are the --mint and --token-account flags of the -spl commands.
type assetFlags struct {
	fungible     bool
	mint         string
	tokenAccount string
}

func (f *assetFlags) register(cmd *cobra.Command, tokenAccountUsage string) {
	if !f.fungible {
		return
	}
	cmd.Flags().StringVar(&f.mint, "mint", "", "Token mint address")
	cmd.Flags().StringVar(&f.tokenAccount, "token-account", "", tokenAccountUsage+" (default: associated token account)")
}

// parse returns the asset and the optional token account override.
func (f *assetFlags) parse(op program.Operation) (asset.Identity, *solana.PublicKey, error) {
	if !f.fungible {
		return asset.Native(), nil, nil
	}
	mint, err := asset.ParseAddress(op.Name(), "mint", f.mint)
	if err != nil {
		return asset.Identity{}, nil, err
	}
	tokenAccount, err := asset.ParseOptionalAddress(op.Name(), "token-account", f.tokenAccount)
	if err != nil {
		return asset.Identity{}, nil, err
	}
	return asset.Fungible(mint), tokenAccount, nil
}

// pick returns the native or the token variant of an operation.
func pick(fungible bool, native, token program.Operation) program.Operation {
	if fungible {
		return token
	}
	return native
}

func initializeCmd(flags *globalFlags) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Create the protocol state with the wallet as admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, flags, outputFormat, func(ctx context.Context, s *staking.Service) (*staking.Result, error) {
				return s.Initialize(ctx)
			})
		},
	}

	addOutputFlag(cmd, &outputFormat)
	return cmd
}

func depositCmd(flags *globalFlags, fungible bool) *cobra.Command {
	var (
		af           = assetFlags{fungible: fungible}
		amount       string
		outputFormat string
	)
	op := pick(fungible, program.OpDepositSol, program.OpDepositSpl)

	cmd := &cobra.Command{
		Use:   "deposit-sol",
		Short: "Stake lamports into the SOL vault",
		Example: `  tqclientd deposit-sol --amount 1000000000
  tqclientd deposit-sol --amount 5000 --dry-run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := parseAmount(op, amount)
			if err != nil {
				return err
			}
			id, from, err := af.parse(op)
			if err != nil {
				return err
			}
			return runOperation(cmd, flags, outputFormat, func(ctx context.Context, s *staking.Service) (*staking.Result, error) {
				return s.Deposit(ctx, id, from, units)
			})
		},
	}
	if fungible {
		cmd.Use = "deposit-spl"
		cmd.Short = "Stake SPL tokens into the vault of a mint"
		cmd.Example = `  tqclientd deposit-spl --mint EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v --amount 2500000`
	}

	af.register(cmd, "Source token account")
	amountUsage := "Amount in lamports"
	if fungible {
		amountUsage = "Amount in token base units"
	}
	cmd.Flags().StringVar(&amount, "amount", "", amountUsage)
	addOutputFlag(cmd, &outputFormat)
	return cmd
}

func withdrawCmd(flags *globalFlags, fungible bool) *cobra.Command {
	var (
		af           = assetFlags{fungible: fungible}
		outputFormat string
	)
	op := pick(fungible, program.OpWithdrawSol, program.OpWithdrawSpl)

	cmd := &cobra.Command{
		Use:   "withdraw-sol",
		Short: "Withdraw the wallet's SOL stake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, to, err := af.parse(op)
			if err != nil {
				return err
			}
			return runOperation(cmd, flags, outputFormat, func(ctx context.Context, s *staking.Service) (*staking.Result, error) {
				return s.Withdraw(ctx, id, to)
			})
		},
	}
	if fungible {
		cmd.Use = "withdraw-spl"
		cmd.Short = "Withdraw the wallet's stake in a mint"
	}

	af.register(cmd, "Destination token account")
	addOutputFlag(cmd, &outputFormat)
	return cmd
}

func withdrawFeesCmd(flags *globalFlags, fungible bool) *cobra.Command {
	var (
		af           = assetFlags{fungible: fungible}
		outputFormat string
	)
	op := pick(fungible, program.OpWithdrawFeesSol, program.OpWithdrawFeesSpl)

	cmd := &cobra.Command{
		Use:   "withdraw-fees-sol",
		Short: "Withdraw the SOL fee pool (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, to, err := af.parse(op)
			if err != nil {
				return err
			}
			return runOperation(cmd, flags, outputFormat, func(ctx context.Context, s *staking.Service) (*staking.Result, error) {
				return s.WithdrawFees(ctx, id, to)
			})
		},
	}
	if fungible {
		cmd.Use = "withdraw-fees-spl"
		cmd.Short = "Withdraw the fee pool of a mint (admin only)"
	}

	af.register(cmd, "Admin token account")
	addOutputFlag(cmd, &outputFormat)
	return cmd
}

func addressesCmd(flags *globalFlags) *cobra.Command {
	var (
		mintStr      string
		userStr      string
		fetchState   bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Print the program derived addresses for an asset",
		Long: `
Print the state, vault, fee and stake addresses with their bumps.
The stake address is shown for --user, or for the configured wallet when
its keypair file exists. With --fetch-state the state account is read from
the cluster and decoded.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "addresses"
			if err := checkOutputFormat(outputFormat); err != nil {
				return err
			}
			id, err := asset.Parse(op, mintStr)
			if err != nil {
				return err
			}
			user, err := asset.ParseOptionalAddress(op, "user", userStr)
			if err != nil {
				return err
			}

			opts := appOptions{optionalWallet: true, readOnly: true, network: fetchState}
			return runWithApp(cmd, flags, opts, func(ctx context.Context, a *app) error {
				addrs, err := a.service.Addresses(id, user)
				if err != nil {
					return err
				}

				var state *program.State
				if fetchState {
					if state, err = a.service.FetchState(ctx); err != nil {
						return err
					}
				}

				var userOut string
				if addrs.Stake != nil {
					if user == nil {
						userOut = a.service.Wallet().String()
					} else {
						userOut = user.String()
					}
				}
				return printOutput(cmd.OutOrStdout(), newAddressesOutput(addrs, userOut, state), outputFormat)
			})
		},
	}

	cmd.Flags().StringVar(&mintStr, "mint", "", "Token mint address (default: native SOL)")
	cmd.Flags().StringVar(&userStr, "user", "", "User whose stake address to derive")
	cmd.Flags().BoolVar(&fetchState, "fetch-state", false, "Read and decode the on-chain state account")
	addOutputFlag(cmd, &outputFormat)
	return cmd
}

func historyCmd(flags *globalFlags) *cobra.Command {
	var (
		limit        int
		prune        bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent submissions from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(outputFormat); err != nil {
				return err
			}
			return runWithApp(cmd, flags, appOptions{journal: true, readOnly: true}, func(ctx context.Context, a *app) error {
				if a.journal == nil {
					return fmt.Errorf("submission journal is disabled in the config")
				}

				var pruned int64
				if prune {
					var err error
					if pruned, err = a.journal.DeleteSubmissionsOlderThan(a.cfg.JournalRetention()); err != nil {
						return err
					}
				}

				subs, err := a.journal.ListSubmissions(limit)
				if err != nil {
					return err
				}
				return printOutput(cmd.OutOrStdout(), newHistoryOutput(subs, pruned), outputFormat)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete finished entries older than the configured retention first")
	addOutputFlag(cmd, &outputFormat)
	return cmd
}

func initConfigCmd(flags *globalFlags) *cobra.Command {
	var (
		force           bool
		generateKeypair bool
	)

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the default config (and optionally a new keypair) to the home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile := filepath.Join(flags.home, constant.ConfigSubdir, constant.ConfigFileName)
			if _, err := os.Stat(configFile); err == nil && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite", configFile)
			}

			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			cfg.NodeHome = flags.home
			if err := config.Save(cfg, flags.home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configFile)

			if generateKeypair {
				path := cfg.ResolveKeypairPath(flags.home)
				key, err := keys.GenerateKeypair(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", path, key.PublicKey())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&generateKeypair, "generate-keypair", false, "Create a new wallet keypair at <home>/keys/id.json")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print tqclientd version info",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", "tqclientd")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Commit:     %s\n", Commit)
			fmt.Fprintf(out, "Go:         %s\n", runtime.Version())
			fmt.Fprintf(out, "Program ID: %s\n", constant.DefaultProgramID)
		},
	}
}
