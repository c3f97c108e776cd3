package selection

import "fmt"

// Reason classifies why a selection changed. Collaborators may react
// differently per reason, for example only raising a software keyboard for
// direct user interaction.
type Reason uint8

const (
	// ReasonUserInteraction is a direct pointer or keyboard gesture.
	ReasonUserInteraction Reason = iota
	// ReasonTransactionSideEffect is a selection carried through a transaction.
	ReasonTransactionSideEffect
	// ReasonProgrammatic is a selection set by code, not by the user.
	ReasonProgrammatic
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonUserInteraction:
		return "user-interaction-direct"
	case ReasonTransactionSideEffect:
		return "transaction-side-effect"
	case ReasonProgrammatic:
		return "programmatic"
	default:
		return fmt.Sprintf("reason(%d)", r)
	}
}

// ParseReason converts a reason name back to a Reason.
func ParseReason(s string) (Reason, error) {
	for _, r := range []Reason{ReasonUserInteraction, ReasonTransactionSideEffect, ReasonProgrammatic} {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown selection reason %q", s)
}
