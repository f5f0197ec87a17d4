package htmltable

import (
	"fmt"
)

type RuleOp string

const (
	RuleRename RuleOp = "rename"
	RulePrefix RuleOp = "prefix"
	RuleSuffix RuleOp = "suffix"
)

// HeaderRule rewrites header labels by position. Positions count from 0
// after the rank column has been dropped.
//
// Either Index targets a single position or [From, To) targets a range.
type HeaderRule struct {
	Op    RuleOp `json:"op"`
	Index *int   `json:"index,omitempty"`
	From  *int   `json:"from,omitempty"`
	To    *int   `json:"to,omitempty"`
	Value string `json:"value"`
}

func Rename(index int, to string) HeaderRule {
	return HeaderRule{Op: RuleRename, Index: &index, Value: to}
}

func Prefix(index int, prefix string) HeaderRule {
	return HeaderRule{Op: RulePrefix, Index: &index, Value: prefix}
}

func SuffixRange(from, to int, suffix string) HeaderRule {
	return HeaderRule{Op: RuleSuffix, From: &from, To: &to, Value: suffix}
}

func (r HeaderRule) String() string {
	if r.Index != nil {
		return fmt.Sprintf("%s@%d(%q)", r.Op, *r.Index, r.Value)
	}
	if r.From != nil && r.To != nil {
		return fmt.Sprintf("%s@[%d,%d)(%q)", r.Op, *r.From, *r.To, r.Value)
	}
	return fmt.Sprintf("%s(%q)", r.Op, r.Value)
}

// span resolves the positions targeted by the rule.
func (r HeaderRule) span() (from int, to int, err error) {
	switch {
	case r.Index != nil && (r.From != nil || r.To != nil):
		return 0, 0, fmt.Errorf("rule %s sets both index and range", r)
	case r.Index != nil:
		return *r.Index, *r.Index + 1, nil
	case r.From != nil && r.To != nil:
		if *r.To <= *r.From {
			return 0, 0, fmt.Errorf("rule %s has an empty range", r)
		}
		return *r.From, *r.To, nil
	default:
		return 0, 0, fmt.Errorf("rule %s has no position", r)
	}
}

// Validate checks the rule in isolation, positions are checked against a
// header in ApplyRules.
func (r HeaderRule) Validate() error {
	switch r.Op {
	case RuleRename, RulePrefix, RuleSuffix:
	default:
		return fmt.Errorf("rule %s has unknown op", r)
	}
	if r.Value == "" {
		return fmt.Errorf("rule %s has no value", r)
	}
	from, _, err := r.span()
	if err != nil {
		return err
	}
	if from < 0 {
		return fmt.Errorf("rule %s has a negative position", r)
	}
	return nil
}

// LayoutError means the configured layout does not fit the page or is
// itself malformed.
type LayoutError struct {
	Category string
	Reason   string
}

func (e *LayoutError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("layout: %s", e.Reason)
	}
	return fmt.Sprintf("layout of category '%s': %s", e.Category, e.Reason)
}

// ApplyRules returns a copy of `header` with every rule applied in order.
func ApplyRules(header []string, rules []HeaderRule) ([]string, error) {
	out := make([]string, len(header))
	copy(out, header)

	for _, r := range rules {
		err := r.Validate()
		if err != nil {
			return nil, &LayoutError{Reason: err.Error()}
		}
		from, to, _ := r.span()
		if to > len(out) {
			return nil, &LayoutError{Reason: fmt.Sprintf(
				"rule %s is out of range for a header of %d columns",
				r, len(out),
			)}
		}
		for i := from; i < to; i++ {
			switch r.Op {
			case RuleRename:
				out[i] = r.Value
			case RulePrefix:
				out[i] = r.Value + out[i]
			case RuleSuffix:
				out[i] = out[i] + r.Value
			}
		}
	}
	return out, nil
}
