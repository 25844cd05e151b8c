package main

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/streamflow-finance/timelock/common"
	"github.com/streamflow-finance/timelock/create"
	"github.com/streamflow-finance/timelock/dump"
	"github.com/streamflow-finance/timelock/state"
)

// runUpdate applies f to the stream passed as the first argument and dumps
// the ledger on success.
func runUpdate(flags *rootFlags, args []string, op string, f func(e *env, c *state.Contract) error) error {
	id, err := state.DecodePublicKey(args[0])
	if err != nil {
		return errors.Wrap(err, "stream id")
	}

	e, err := openEnv(flags)
	if err != nil {
		return err
	}
	defer e.close()

	if _, err = e.store.Update(id, func(c *state.Contract) error { return f(e, c) }); err != nil {
		return errors.Wrapf(err, "%s stream %s", op, id)
	}

	return e.persist()
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var cfgPath, feesPath string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a stream described by the YAML config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readStreamConfig(cfgPath)
			if err != nil {
				return err
			}

			var authority create.FeeAuthority
			if feesPath != "" {
				if authority, err = readFeeTable(feesPath); err != nil {
					return err
				}
			}

			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer e.close()

			c, err := create.Create(create.Prm{
				Logger:    e.log,
				Now:       e.now(),
				ProgramID: cfg.ProgramID,
				Metadata:  cfg.Metadata,
				Accounts:  cfg.Accounts,
				Params:    cfg.Params,
				Fees:      authority,
			})
			if err != nil {
				return err
			}

			if err = e.store.Create(cfg.Metadata, c); err != nil {
				return err
			}
			if err = e.persist(); err != nil {
				return err
			}

			gross, err := c.GrossAmount()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stream %s: transfer %d tokens to escrow %s\n",
				cfg.Metadata, gross, c.EscrowTokens)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to YAML stream config")
	cmd.Flags().StringVar(&feesPath, "fees", "", "Path to YAML fee table, default fees if empty")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func newDepositCmd(flags *rootFlags) *cobra.Command {
	var net, gross uint64

	cmd := &cobra.Command{
		Use:   "deposit <stream>",
		Short: "Top up the stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (net == 0) == (gross == 0) {
				return errors.New("exactly one of --net and --gross must be set")
			}
			return runUpdate(flags, args, "deposit to", func(e *env, c *state.Contract) error {
				if net != 0 {
					return c.DepositNet(net)
				}
				return c.DepositGross(gross)
			})
		},
	}

	cmd.Flags().Uint64Var(&net, "net", 0, "Principal added to the stream, fees are charged on top")
	cmd.Flags().Uint64Var(&gross, "gross", 0, "Amount transferred to escrow, fees are charged from it")

	return cmd
}

func newSyncCmd(flags *rootFlags) *cobra.Command {
	var balance uint64

	cmd := &cobra.Command{
		Use:   "sync <stream>",
		Short: "Credit tokens sent to the stream escrow directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var credited uint64
			err := runUpdate(flags, args, "sync", func(e *env, c *state.Contract) error {
				var err error
				credited, err = c.TrySyncBalance(balance)
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "credited %d tokens\n", credited)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&balance, "balance", 0, "Current escrow balance")
	_ = cmd.MarkFlagRequired("balance")

	return cmd
}

func newWithdrawCmd(flags *rootFlags) *cobra.Command {
	var amount uint64

	cmd := &cobra.Command{
		Use:   "withdraw <stream>",
		Short: "Withdraw vested tokens to the recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				paid uint64
				to   state.PublicKey
			)
			err := runUpdate(flags, args, "withdraw from", func(e *env, c *state.Contract) error {
				var err error
				paid, err = c.Withdraw(e.now(), amount)
				to = c.RecipientTokens
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "transfer %d tokens to %s\n", paid, to)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&amount, "amount", 0, "Amount to withdraw, everything available if zero")

	return cmd
}

func newWithdrawFeeCmd(flags *rootFlags) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "withdraw-fee <stream>",
		Short: "Pay out accrued fees to the beneficiary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseFeeKind(kind)
			if err != nil {
				return err
			}
			var (
				paid uint64
				to   state.PublicKey
			)
			err = runUpdate(flags, args, "withdraw fee from", func(e *env, c *state.Contract) error {
				var err error
				paid, err = c.WithdrawFee(k)
				to = c.Fees[k].Tokens
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "transfer %d tokens to %s\n", paid, to)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", state.FeePlatform.String(), "Fee kind: platform or partner")

	return cmd
}

func newCancelCmd(flags *rootFlags) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "cancel <stream>",
		Short: "Cancel the stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := parseRole(by)
			if err != nil {
				return err
			}
			return runUpdate(flags, args, "cancel", func(e *env, c *state.Contract) error {
				return c.Cancel(e.now(), role)
			})
		},
	}

	cmd.Flags().StringVar(&by, "by", "sender", "Canceling party: sender, recipient or third-party")

	return cmd
}

type showResult struct {
	dump.Summary
	Vested       uint64 `json:"vested"`
	Withdrawable uint64 `json:"withdrawable"`
	Closable     bool   `json:"closable"`
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <stream>",
		Short: "Print the stream state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := state.DecodePublicKey(args[0])
			if err != nil {
				return errors.Wrap(err, "stream id")
			}

			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer e.close()

			c, err := e.store.Get(id)
			if err != nil {
				return err
			}

			res, err := describe(id, c, e.now())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func describe(id state.PublicKey, c *state.Contract, now uint64) (showResult, error) {
	s, err := dump.NewSummary(id, c)
	if err != nil {
		return showResult{}, err
	}

	vested, err := c.Vested(now)
	if err != nil {
		return showResult{}, err
	}
	available, err := c.Withdrawable(now)
	if err != nil {
		return showResult{}, err
	}

	return showResult{
		Summary:      s,
		Vested:       vested,
		Withdrawable: available,
		Closable:     c.IsClosable(now),
	}, nil
}

func newEscrowCmd() *cobra.Command {
	var program string

	cmd := &cobra.Command{
		Use:   "escrow <metadata>",
		Short: "Print the escrow account of the stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := state.DecodePublicKey(args[0])
			if err != nil {
				return errors.Wrap(err, "metadata")
			}
			programID, err := state.DecodePublicKey(program)
			if err != nil {
				return errors.Wrap(err, "program id")
			}

			escrow := state.FindEscrowAccount(common.ProgramVersion, seed[:], programID)
			fmt.Fprintln(cmd.OutOrStdout(), escrow)
			return nil
		},
	}

	cmd.Flags().StringVar(&program, "program", "", "Program id owning the escrow")
	_ = cmd.MarkFlagRequired("program")

	return cmd
}

func parseFeeKind(s string) (state.FeeKind, error) {
	switch s {
	case state.FeePlatform.String():
		return state.FeePlatform, nil
	case state.FeePartner.String():
		return state.FeePartner, nil
	default:
		return 0, errors.Newf("unknown fee kind '%s'", s)
	}
}

func parseRole(s string) (state.Role, error) {
	switch s {
	case "sender":
		return state.RoleSender, nil
	case "recipient":
		return state.RoleRecipient, nil
	case "third-party":
		return state.RoleThirdParty, nil
	default:
		return 0, errors.Newf("unknown role '%s'", s)
	}
}
