package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	dir   string
	label string
	debug bool
	now   uint64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "timelock",
		Short:         "Manage token vesting streams kept in a local dump directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dir, "dir", "streams", "Directory with ledger dumps")
	pf.StringVar(&flags.label, "label", "local", "Label of the ledger (e.g. 'devnet')")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	pf.Uint64Var(&flags.now, "now", 0, "Unix timestamp of the operation, current time if zero")

	root.AddCommand(
		newCreateCmd(&flags),
		newDepositCmd(&flags),
		newSyncCmd(&flags),
		newWithdrawCmd(&flags),
		newWithdrawFeeCmd(&flags),
		newCancelCmd(&flags),
		newShowCmd(&flags),
		newEscrowCmd(),
	)

	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
