////////////////////////////////////////////////////////////////////////////////
// Okinoko governance: token weighted DAO core with a pooled vault
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"okinoko_gov/contract"
	"okinoko_gov/sdk"
)

var (
	configPath string
	dataDir    string
	snapshot   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "govd",
	Short:         "Host tooling for the governance runtime",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config, defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "badger directory holding the state")
	rootCmd.PersistentFlags().StringVar(&snapshot, "snapshot", "", "JSON state snapshot, used instead of --data")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the production logger, or the development one with --verbose.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openRuntime loads the config and opens the store the flags point at. The caller closes the store.
func openRuntime(log *zap.Logger) (*contract.Runtime, sdk.Store, error) {
	cfg := contract.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = contract.LoadConfig(configPath); err != nil {
			return nil, nil, err
		}
	}

	var (
		store sdk.Store
		err   error
	)
	switch {
	case snapshot != "":
		store, err = sdk.NewFileMemStore(snapshot)
	case dataDir != "":
		store, err = sdk.OpenBadger(dataDir)
	default:
		return nil, nil, fmt.Errorf("either --data or --snapshot is required")
	}
	if err != nil {
		return nil, nil, err
	}

	rt, err := contract.New(store, cfg, contract.WithLogger(log))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return rt, store, nil
}
