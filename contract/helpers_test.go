package contract_test

import (
	"testing"

	"github.com/CosmWasm/tinyjson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"okinoko_gov/contract"
	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

const (
	alice    sdk.AccountID = "alice"
	bob      sdk.AccountID = "bob"
	carol    sdk.AccountID = "carol"
	dave     sdk.AccountID = "dave"
	erin     sdk.AccountID = "erin"
	receiver sdk.AccountID = "receiver"
	outsider sdk.AccountID = "outsider"
)

var defaultRule = dao.NewRuleParam(60, 5, 0)

// harness bundles a runtime over a fresh memory store with a recorder for committed events.
type harness struct {
	t   *testing.T
	rt  *contract.Runtime
	rec *sdk.Recorder
	reg *prometheus.Registry
	m   *contract.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, sdk.NewMemStore(), contract.DefaultConfig())
}

func newHarnessWith(t *testing.T, store sdk.Store, cfg contract.Config) *harness {
	t.Helper()
	rec := &sdk.Recorder{}
	reg := prometheus.NewRegistry()
	m := contract.NewMetrics(reg)
	rt, err := contract.New(store, cfg, contract.WithSink(rec), contract.WithMetrics(m))
	require.NoError(t, err)
	return &harness{t: t, rt: rt, rec: rec, reg: reg, m: m}
}

func at(caller sdk.AccountID, height uint64) sdk.Env {
	return sdk.Env{Caller: caller, Height: height, TxID: string(caller) + "-tx"}
}

func (h *harness) endow(who sdk.AccountID, amount sdk.Balance) {
	h.t.Helper()
	require.NoError(h.t, h.rt.Endow(who, amount))
}

func (h *harness) createOrg(creator sdk.AccountID, total sdk.Balance, rule dao.RuleParam) sdk.AccountID {
	h.t.Helper()
	org, err := h.rt.CreateOrganization(at(creator, 1), total, rule)
	require.NoError(h.t, err)
	return org
}

func (h *harness) addMember(org, actor, member sdk.AccountID, assign sdk.Balance) {
	h.t.Helper()
	require.NoError(h.t, h.rt.AddMember(at(actor, 1), org, member, assign))
}

func (h *harness) deposit(org, payer sdk.AccountID, value sdk.Balance) {
	h.t.Helper()
	require.NoError(h.t, h.rt.Deposit(at(payer, 1), org, value))
}

func (h *harness) propose(org, creator sdk.AccountID, action []byte, rule dao.RuleParam, height, length uint64) dao.ProposalID {
	h.t.Helper()
	pid, err := h.rt.CreateProposal(at(creator, height), org, action, rule, length)
	require.NoError(h.t, err)
	return pid
}

func (h *harness) tokenAccount(org, who sdk.AccountID) dao.AssetAccount {
	h.t.Helper()
	o, err := h.rt.Organization(org)
	require.NoError(h.t, err)
	acc, err := h.rt.TokenAccount(o.TokenID, who)
	require.NoError(h.t, err)
	return acc
}

func (h *harness) currency(who sdk.AccountID) sdk.Balance {
	h.t.Helper()
	b, err := h.rt.CurrencyBalance(who)
	require.NoError(h.t, err)
	return b
}

func (h *harness) vault(org sdk.AccountID) sdk.Balance {
	h.t.Helper()
	b, err := h.rt.VaultBalance(org)
	require.NoError(h.t, err)
	return b
}

func (h *harness) proposalCount() uint64 {
	h.t.Helper()
	n, err := h.rt.ProposalCount()
	require.NoError(h.t, err)
	return n
}

func mustAction(t *testing.T, tag string, payload tinyjson.Marshaler) []byte {
	t.Helper()
	raw, err := dao.EncodeAction(tag, payload)
	require.NoError(t, err)
	return raw
}

func transferAction(t *testing.T, tag string, to sdk.AccountID, amount sdk.Balance) []byte {
	t.Helper()
	return mustAction(t, tag, dao.TransferArgs{To: to, Amount: amount})
}
