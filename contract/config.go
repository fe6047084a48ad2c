package contract

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"okinoko_gov/sdk"
)

// Config carries the runtime constants. Zero values are not meaningful, start from DefaultConfig.
type Config struct {
	// CustodyModule is the 8 byte module id of the shared vault pot.
	CustodyModule string `yaml:"custody_module"`
	// OrgModule is the 8 byte module id organization ids are derived from.
	OrgModule string `yaml:"org_module"`
	// ProposalStake is locked from the creator on every new proposal.
	ProposalStake uint64 `yaml:"proposal_stake"`
	// AccountCacheSize bounds the derived id LRU, 0 turns caching off.
	AccountCacheSize int `yaml:"account_cache_size"`
	// LogEvents mirrors committed events into the zap logger.
	LogEvents bool `yaml:"log_events"`
}

// DefaultConfig returns the stock module ids and a stake of one unit.
func DefaultConfig() Config {
	return Config{
		CustodyModule:    DefaultCustodyModule,
		OrgModule:        DefaultOrgModule,
		ProposalStake:    DefaultProposalStake,
		AccountCacheSize: DefaultAccountCacheSize,
		LogEvents:        true,
	}
}

// Validate reports every broken field at once.
func (c Config) Validate() error {
	var err error
	if _, e := sdk.ParseModuleID(c.CustodyModule); e != nil {
		err = multierr.Append(err, fmt.Errorf("custody_module: %w", e))
	}
	if _, e := sdk.ParseModuleID(c.OrgModule); e != nil {
		err = multierr.Append(err, fmt.Errorf("org_module: %w", e))
	}
	if c.CustodyModule == c.OrgModule {
		err = multierr.Append(err, fmt.Errorf("custody_module and org_module must differ"))
	}
	if c.AccountCacheSize < 0 {
		err = multierr.Append(err, fmt.Errorf("account_cache_size: must not be negative, got %d", c.AccountCacheSize))
	}
	return err
}

// ParseConfig overlays YAML onto the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadConfig reads path and hands it to ParseConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), errors.Wrap(err, "read config")
	}
	return ParseConfig(data)
}
