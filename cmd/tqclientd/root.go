package main

import (
	"github.com/spf13/cobra"

	"github.com/pushchain/token-quest-client/stakingClient/constant"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	home         string
	rpcURLs      []string
	keypair      string
	programID    string
	logLevel     string
	logFormat    string
	dryRun       bool
	printMetrics bool
}

func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "tqclientd",
		Short:         "Token Quest staking client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.home, "home", constant.DefaultNodeHome, "Client home directory")
	pf.StringSliceVar(&flags.rpcURLs, "rpc-url", nil, "Solana RPC endpoint (repeatable, overrides config)")
	pf.StringVar(&flags.keypair, "keypair", "", "Solana CLI keypair file (default <home>/keys/id.json)")
	pf.StringVar(&flags.programID, "program-id", "", "token_quest program id (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error or 0-5 (overrides config)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: console|json (overrides config)")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Build and print transactions without submitting them")
	pf.BoolVar(&flags.printMetrics, "print-metrics", false, "Print operation metrics after the command")

	InitRootCmd(rootCmd, flags) // add operation, query and utility subcommands

	return rootCmd
}
