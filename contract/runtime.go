package contract

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

// Runtime applies one call at a time against a store. Each call runs in its own txn: it either
// commits with all of its events or leaves no trace.
type Runtime struct {
	mu sync.Mutex

	store    sdk.Store
	cfg      Config
	log      *zap.Logger
	sinks    sdk.FanOut
	metrics  *Metrics
	executor *Executor

	orgIDs  *sdk.Deriver
	custody sdk.AccountID
	stake   sdk.Balance
}

// Option tweaks a Runtime at construction.
type Option func(*Runtime)

// WithLogger sets the logger, nil keeps the no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runtime) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSink adds a sink that receives committed events. Can be given several times.
func WithSink(sink sdk.EventSink) Option {
	return func(r *Runtime) {
		r.sinks = append(r.sinks, sink)
	}
}

// WithMetrics sets the collectors, without it an unregistered set is used.
func WithMetrics(m *Metrics) Option {
	return func(r *Runtime) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithExecutor replaces the action table, mostly for embedders that start from their own set.
func WithExecutor(e *Executor) Option {
	return func(r *Runtime) {
		if e != nil {
			r.executor = e
		}
	}
}

// New validates cfg and builds a runtime over store.
func New(store sdk.Store, cfg Config, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	custody, err := sdk.ParseModuleID(cfg.CustodyModule)
	if err != nil {
		return nil, err
	}
	orgModule, err := sdk.ParseModuleID(cfg.OrgModule)
	if err != nil {
		return nil, err
	}
	orgIDs, err := sdk.NewDeriver(orgModule, cfg.AccountCacheSize)
	if err != nil {
		return nil, err
	}

	r := &Runtime{
		store:   store,
		cfg:     cfg,
		log:     zap.NewNop(),
		orgIDs:  orgIDs,
		custody: custody.Account(),
		stake:   sdk.Balance(cfg.ProposalStake),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	if r.executor == nil {
		r.executor = NewExecutor()
	}
	if cfg.LogEvents {
		r.sinks = append(sdk.FanOut{sdk.NewLogSink(r.log)}, r.sinks...)
	}
	return r, nil
}

// Executor exposes the action table so embedders can Register their own tags.
func (r *Runtime) Executor() *Executor {
	return r.executor
}

// Config returns the configuration the runtime was built with.
func (r *Runtime) Config() Config {
	return r.cfg
}

// CustodyAccount is the shared pot every vault booking lives in.
func (r *Runtime) CustodyAccount() sdk.AccountID {
	return r.custody
}

// apply runs fn as one atomic call. Failed calls are discarded with their events, except for
// errors marked keepChanges which still commit.
func (r *Runtime) apply(env sdk.Env, op string, fn func(c *Call) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.Calls.WithLabelValues(op).Inc()
	log := r.log.With(
		zap.String("op", op),
		zap.String("caller", env.Caller.String()),
		zap.Uint64("height", env.Height),
		zap.String("tx", env.TxID),
	)
	log.Debug("apply")

	txn, err := r.store.Begin(true)
	if err != nil {
		return r.fail(log, op, err)
	}
	events := &sdk.EventBuffer{}
	callErr := fn(newCall(r, env, txn, events))

	var keep keepChanges
	if callErr != nil && !errors.As(callErr, &keep) {
		txn.Discard()
		return r.fail(log, op, callErr)
	}
	if err := txn.Commit(); err != nil {
		txn.Discard()
		return r.fail(log, op, err)
	}
	committed := events.Events()
	events.Flush(r.sinks)
	r.metrics.observeEvents(committed)

	if callErr != nil {
		return r.fail(log, op, keep.error)
	}
	return nil
}

func (r *Runtime) fail(log *zap.Logger, op string, err error) error {
	r.metrics.Failures.WithLabelValues(op, string(ClassOf(err))).Inc()
	log.Info("call failed", zap.Error(err))
	return err
}

// view runs fn against a read only txn that is always discarded.
func (r *Runtime) view(fn func(c *Call) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, err := r.store.Begin(false)
	if err != nil {
		return err
	}
	defer txn.Discard()
	return fn(newCall(r, sdk.Env{}, txn, &sdk.EventBuffer{}))
}

// -----------------------------------------------------------------------------
// Calls
// -----------------------------------------------------------------------------

// CreateOrganization creates an organization owned by the caller with a fresh voting token.
func (r *Runtime) CreateOrganization(env sdk.Env, total sdk.Balance, rule dao.RuleParam) (sdk.AccountID, error) {
	var org sdk.AccountID
	err := r.apply(env, "create_organization", func(c *Call) error {
		var err error
		org, err = c.Orgs.Create(env.Caller, total, rule)
		return err
	})
	if err != nil {
		return "", err
	}
	return org, nil
}

// AddMember seats member in org, handing over assign of the caller's free tokens.
func (r *Runtime) AddMember(env sdk.Env, org, member sdk.AccountID, assign sdk.Balance) error {
	return r.apply(env, "add_member", func(c *Call) error {
		return c.Orgs.AddMember(env.Caller, member, org, assign)
	})
}

// Deposit moves value of the caller's base currency into the vault of org.
func (r *Runtime) Deposit(env sdk.Env, org sdk.AccountID, value sdk.Balance) error {
	return r.apply(env, "deposit", func(c *Call) error {
		if _, err := c.Orgs.Get(org); err != nil {
			return err
		}
		return c.Vault.Deposit(org, env.Caller, value)
	})
}

// CreateProposal stages action for org. The proposal expires length blocks after the current height.
func (r *Runtime) CreateProposal(env sdk.Env, org sdk.AccountID, action []byte, rule dao.RuleParam, length uint64) (dao.ProposalID, error) {
	var pid dao.ProposalID
	err := r.apply(env, "create_proposal", func(c *Call) error {
		var err error
		pid, err = c.Proposals.Create(org, env.Caller, action, rule, expiryOf(env.Height, length))
		return err
	})
	if err != nil {
		return dao.ProposalID{}, err
	}
	return pid, nil
}

// expiryOf saturates instead of wrapping around.
func expiryOf(height, length uint64) uint64 {
	if length > math.MaxUint64-height {
		return math.MaxUint64
	}
	return height + length
}

// Vote locks amount of the caller's voting tokens in favour of or against pid.
func (r *Runtime) Vote(env sdk.Env, org sdk.AccountID, pid dao.ProposalID, amount sdk.Balance, approve bool) error {
	return r.apply(env, "vote", func(c *Call) error {
		return c.Voting.Vote(org, pid, env.Caller, amount, approve)
	})
}

// Close lets anyone settle a proposal that passed or expired. An open proposal stays untouched.
func (r *Runtime) Close(env sdk.Env, org sdk.AccountID, pid dao.ProposalID) (Outcome, error) {
	outcome := OutcomeOpen
	err := r.apply(env, "close", func(c *Call) error {
		var err error
		outcome, err = c.Voting.TryClose(org, pid)
		return err
	})
	if err != nil {
		return OutcomeOpen, err
	}
	return outcome, nil
}

// TransferToken moves free tokens from the caller.
func (r *Runtime) TransferToken(env sdk.Env, asset sdk.AssetID, to sdk.AccountID, amount sdk.Balance) error {
	return r.apply(env, "transfer_token", func(c *Call) error {
		return c.Tokens.Transfer(asset, env.Caller, to, amount)
	})
}

// Mint issues amount of asset to the caller, who must be its issuer.
func (r *Runtime) Mint(env sdk.Env, asset sdk.AssetID, amount sdk.Balance) error {
	return r.apply(env, "mint", func(c *Call) error {
		return c.Tokens.Mint(asset, env.Caller, amount)
	})
}

// Burn destroys amount of the caller's free tokens, the caller must be the issuer.
func (r *Runtime) Burn(env sdk.Env, asset sdk.AssetID, amount sdk.Balance) error {
	return r.apply(env, "burn", func(c *Call) error {
		return c.Tokens.Burn(asset, env.Caller, amount)
	})
}

// Endow credits base currency out of thin air. It is the host's genesis hook, not a user call.
func (r *Runtime) Endow(who sdk.AccountID, amount sdk.Balance) error {
	return r.apply(sdk.Env{Caller: who}, "endow", func(c *Call) error {
		return c.Currency.Endow(who, amount)
	})
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// Organization loads an organization record.
func (r *Runtime) Organization(org sdk.AccountID) (*dao.Organization, error) {
	var o *dao.Organization
	err := r.view(func(c *Call) error {
		var err error
		o, err = c.Orgs.Get(org)
		return err
	})
	return o, err
}

// OrganizationByIndex resolves the n-th created organization.
func (r *Runtime) OrganizationByIndex(n uint32) (sdk.AccountID, *dao.Organization, error) {
	var (
		org sdk.AccountID
		o   *dao.Organization
	)
	err := r.view(func(c *Call) error {
		counter, err := c.Orgs.Counter()
		if err != nil {
			return err
		}
		if n >= counter {
			return fmt.Errorf("%w: index %d of %d", ErrOrganizationNotFound, n, counter)
		}
		org = c.Orgs.IDAt(n)
		o, err = c.Orgs.Get(org)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return org, o, nil
}

// OrganizationCount is how many organizations were ever created.
func (r *Runtime) OrganizationCount() (uint32, error) {
	var n uint32
	err := r.view(func(c *Call) error {
		var err error
		n, err = c.Orgs.Counter()
		return err
	})
	return n, err
}

// Proposal loads an open proposal.
func (r *Runtime) Proposal(pid dao.ProposalID) (*dao.Proposal, error) {
	var p *dao.Proposal
	err := r.view(func(c *Call) error {
		var err error
		p, err = c.Proposals.Get(pid)
		return err
	})
	return p, err
}

// OpenProposals lists the proposals of org that are still waiting for a pass or expiry.
func (r *Runtime) OpenProposals(org sdk.AccountID) ([]dao.ProposalID, error) {
	var ids []dao.ProposalID
	err := r.view(func(c *Call) error {
		var err error
		ids, err = c.Proposals.Open(org)
		return err
	})
	return ids, err
}

// ProposalCount is the number of open proposals across all organizations.
func (r *Runtime) ProposalCount() (uint64, error) {
	var n uint64
	err := r.view(func(c *Call) error {
		var err error
		n, err = c.Proposals.Count()
		return err
	})
	return n, err
}

// IsMember is false for unknown organizations.
func (r *Runtime) IsMember(org, who sdk.AccountID) (bool, error) {
	var ok bool
	err := r.view(func(c *Call) error {
		var err error
		ok, err = c.Orgs.IsMember(org, who)
		return err
	})
	return ok, err
}

// TokenAccount returns the free and frozen balance of who.
func (r *Runtime) TokenAccount(asset sdk.AssetID, who sdk.AccountID) (dao.AssetAccount, error) {
	var acc dao.AssetAccount
	err := r.view(func(c *Call) error {
		var err error
		acc, err = c.Tokens.Account(asset, who)
		return err
	})
	return acc, err
}

// TotalSupply is zero for unknown assets.
func (r *Runtime) TotalSupply(asset sdk.AssetID) (sdk.Balance, error) {
	var total sdk.Balance
	err := r.view(func(c *Call) error {
		var err error
		total, err = c.Tokens.TotalSupply(asset)
		return err
	})
	return total, err
}

// VaultBalance fails with ledger.ErrUnknownOwnerID when org was never funded.
func (r *Runtime) VaultBalance(org sdk.AccountID) (sdk.Balance, error) {
	var bal sdk.Balance
	err := r.view(func(c *Call) error {
		var err error
		bal, err = c.Vault.BalanceOf(org)
		return err
	})
	return bal, err
}

// VaultLocked is the proposal stake who currently has locked against org.
func (r *Runtime) VaultLocked(org, who sdk.AccountID) (sdk.Balance, error) {
	var bal sdk.Balance
	err := r.view(func(c *Call) error {
		var err error
		bal, err = c.Vault.LockedOf(org, who)
		return err
	})
	return bal, err
}

// CurrencyBalance is who's free base currency.
func (r *Runtime) CurrencyBalance(who sdk.AccountID) (sdk.Balance, error) {
	var bal sdk.Balance
	err := r.view(func(c *Call) error {
		var err error
		bal, err = c.Currency.FreeBalance(who)
		return err
	})
	return bal, err
}
