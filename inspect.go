package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"okinoko_gov/contract/ledger"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print every organization with its vault and open proposals",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		rt, store, err := openRuntime(log)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, store.Close()) }()

		out := cmd.OutOrStdout()
		n, err := rt.OrganizationCount()
		if err != nil {
			return err
		}
		custody, err := rt.CurrencyBalance(rt.CustodyAccount())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "custody %s holds %d\n", rt.CustodyAccount(), custody)
		fmt.Fprintf(out, "organizations %d\n", n)

		for i := uint32(0); i < n; i++ {
			org, o, err := rt.OrganizationByIndex(i)
			if err != nil {
				return err
			}
			vault := "unfunded"
			bal, err := rt.VaultBalance(org)
			switch {
			case err == nil:
				vault = bal.String()
			case !errors.Is(err, ledger.ErrUnknownOwnerID):
				return err
			}
			open, err := rt.OpenProposals(org)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d %s members=%d token=%s rule=%s vault=%s open=%d\n",
				i, org, o.Count(), o.TokenID, o.Rule, vault, len(open))
			for _, pid := range open {
				fmt.Fprintf(out, "  %s\n", pid)
			}
		}
		log.Debug("inspected", zap.Uint32("organizations", n))
		return nil
	},
}
