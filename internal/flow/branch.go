package flow

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// TransitionKind distinguishes static edges from predicate edges.
type TransitionKind string

const (
	// TransitionNone marks a step without an outgoing edge (terminal steps only).
	TransitionNone TransitionKind = ""
	// TransitionStatic always moves to Target.
	TransitionStatic TransitionKind = "static"
	// TransitionPredicate chooses between IfTrue, IfFalse and IfAbsent by evaluating When.
	TransitionPredicate TransitionKind = "predicate"
)

// PredicateOp is the comparison a predicate applies to its field.
type PredicateOp string

const (
	// OpIsTrue holds when the field is the boolean true.
	OpIsTrue PredicateOp = "is_true"
	// OpEquals holds when the field is a string equal to Value.
	OpEquals PredicateOp = "equals"
	// OpPresent holds when the field is present and non-empty. It is never undecided.
	OpPresent PredicateOp = "present"
)

// Predicate is a single boolean test over one collected field.
type Predicate struct {
	Field models.FieldID `json:"field"`
	Op    PredicateOp    `json:"op"`
	Value string         `json:"value,omitempty"`
}

// Eval evaluates the predicate. decided is false when the deciding field is absent,
// in which case the caller routes to the transition's IfAbsent target.
func (p Predicate) Eval(data models.IntakeData) (result, decided bool) {
	var (
		v  any
		ok bool
	)
	if data != nil {
		v, ok = data.Lookup(p.Field)
	}
	if p.Op == OpPresent {
		return ok && !isEmptyValue(v), true
	}
	if !ok {
		return false, false
	}
	switch p.Op {
	case OpIsTrue:
		b, isBool := v.(bool)
		return isBool && b, true
	case OpEquals:
		s, isString := v.(string)
		return isString && s == p.Value, true
	}
	return false, true
}

func (p Predicate) String() string {
	if p.Op == OpEquals {
		return fmt.Sprintf("%s %s %q", p.Field, p.Op, p.Value)
	}
	return fmt.Sprintf("%s %s", p.Field, p.Op)
}

// Transition is a step's outgoing edge.
type Transition struct {
	Kind     TransitionKind `json:"kind,omitempty"`
	Target   models.StepID  `json:"target,omitempty"`
	When     *Predicate     `json:"when,omitempty"`
	IfTrue   models.StepID  `json:"if_true,omitempty"`
	IfFalse  models.StepID  `json:"if_false,omitempty"`
	IfAbsent models.StepID  `json:"if_absent,omitempty"`
}

// Static returns an unconditional edge to target.
func Static(target models.StepID) Transition {
	return Transition{Kind: TransitionStatic, Target: target}
}

// When returns a predicate edge. The absent-field branch defaults to ifFalse; use
// WhenAbsent to route it elsewhere.
func When(p Predicate, ifTrue, ifFalse models.StepID) Transition {
	return Transition{
		Kind:     TransitionPredicate,
		When:     &p,
		IfTrue:   ifTrue,
		IfFalse:  ifFalse,
		IfAbsent: ifFalse,
	}
}

// WhenAbsent overrides the target used when the predicate's field has not been collected.
func (t Transition) WhenAbsent(target models.StepID) Transition {
	t.IfAbsent = target
	return t
}

// Resolve returns the next step id for data. It never fails; a transition of kind
// TransitionNone resolves to the empty id.
func (t Transition) Resolve(data models.IntakeData) models.StepID {
	switch t.Kind {
	case TransitionStatic:
		return t.Target
	case TransitionPredicate:
		if t.When == nil {
			return t.IfAbsent
		}
		result, decided := t.When.Eval(data)
		switch {
		case !decided:
			return t.IfAbsent
		case result:
			return t.IfTrue
		default:
			return t.IfFalse
		}
	}
	return ""
}

// Targets lists every step id the transition can reach, without duplicates.
func (t Transition) Targets() []models.StepID {
	var raw []models.StepID
	switch t.Kind {
	case TransitionStatic:
		raw = []models.StepID{t.Target}
	case TransitionPredicate:
		raw = []models.StepID{t.IfTrue, t.IfFalse, t.IfAbsent}
	}
	var out []models.StepID
	for _, id := range raw {
		dup := false
		for _, seen := range out {
			if seen == id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, id)
		}
	}
	return out
}

// String renders the edge for audit output, e.g. "hasLogo is_true ? logo_upload : package_options".
func (t Transition) String() string {
	switch t.Kind {
	case TransitionStatic:
		return "-> " + string(t.Target)
	case TransitionPredicate:
		var sb strings.Builder
		if t.When != nil {
			sb.WriteString(t.When.String())
		}
		fmt.Fprintf(&sb, " ? %s : %s", t.IfTrue, t.IfFalse)
		if t.IfAbsent != t.IfFalse {
			fmt.Fprintf(&sb, " (absent: %s)", t.IfAbsent)
		}
		return sb.String()
	}
	return "(end)"
}

// isEmptyValue reports whether a present value counts as missing:
// whitespace-only strings and zero-length lists or maps. Booleans and numbers never do.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case map[string]int:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
