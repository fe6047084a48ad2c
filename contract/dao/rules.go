package dao

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/multierr"

	"okinoko_gov/sdk"
)

// MaxPercent is the upper bound of every rule threshold.
const MaxPercent = 100

// ErrRuleOutOfRange is wrapped by Validate for every threshold above MaxPercent.
var ErrRuleOutOfRange = errors.New("rule threshold out of range")

// RuleParam holds percentage thresholds, 0 disables a clause.
// A proposal passes with more than MinAffirmative% yes, at most MaxDissenting% no
// and at most Abstention% abstained weight, all relative to the token supply.
type RuleParam struct {
	MinAffirmative uint32
	MaxDissenting  uint32
	Abstention     uint32
}

// NewRuleParam is a positional shortcut mostly used by tests.
// Example payload: dao.NewRuleParam(60, 5, 0)
func NewRuleParam(minAffirmative, maxDissenting, abstention uint32) RuleParam {
	return RuleParam{MinAffirmative: minAffirmative, MaxDissenting: maxDissenting, Abstention: abstention}
}

// Validate collects every threshold above MaxPercent.
func (r RuleParam) Validate() error {
	var err error
	check := func(name string, v uint32) {
		if v > MaxPercent {
			err = multierr.Append(err, fmt.Errorf("%w: %s=%d", ErrRuleOutOfRange, name, v))
		}
	}
	check("min_affirmative", r.MinAffirmative)
	check("max_dissenting", r.MaxDissenting)
	check("abstention", r.Abstention)
	return err
}

// IsPass evaluates the three clauses against the total supply. Comparisons are done on
// cross multiplied integers (amount*100 vs pct*total) so nothing rounds or overflows.
func (r RuleParam) IsPass(yes, no, abstain, total sdk.Balance) bool {
	return (r.MinAffirmative == 0 || exceeds(yes, r.MinAffirmative, total)) &&
		(r.MaxDissenting == 0 || !exceeds(no, r.MaxDissenting, total)) &&
		(r.Abstention == 0 || !exceeds(abstain, r.Abstention, total))
}

// InheritValid reports whether sub is at least as strict as r.
func (r RuleParam) InheritValid(sub RuleParam) bool {
	return sub.MinAffirmative >= r.MinAffirmative &&
		sub.MaxDissenting <= r.MaxDissenting &&
		sub.Abstention <= r.Abstention
}

// String renders the rule as "min/max/abst" for event lines.
func (r RuleParam) String() string {
	return fmt.Sprintf("%d/%d/%d", r.MinAffirmative, r.MaxDissenting, r.Abstention)
}

// exceeds reports amount > pct% of total.
func exceeds(amount sdk.Balance, pct uint32, total sdk.Balance) bool {
	lhs := new(uint256.Int).Mul(uint256.NewInt(uint64(amount)), uint256.NewInt(MaxPercent))
	rhs := new(uint256.Int).Mul(uint256.NewInt(uint64(pct)), uint256.NewInt(uint64(total)))
	return lhs.Gt(rhs)
}
