package domain

// DecisionAction discriminates the three possible observer verdicts on
// a proposed trade.
type DecisionAction int

const (
	ActionApprove DecisionAction = iota
	ActionReject
	ActionModify
)

// String returns a human-readable name for the action.
func (a DecisionAction) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionReject:
		return "reject"
	case ActionModify:
		return "modify"
	default:
		return "unknown"
	}
}

// TradeDecision is the closed variant returned by an observer's
// PreTrade hook. Values are built only through Approve, Reject and
// Modify, so the pipeline never sees a malformed combination.
type TradeDecision struct {
	action      DecisionAction
	reason      string
	replacement *ProposedTrade
}

// Approve passes the current proposal through unchanged.
func Approve() TradeDecision {
	return TradeDecision{action: ActionApprove}
}

// Reject halts the pipeline for this proposal with the given reason.
func Reject(reason string) TradeDecision {
	return TradeDecision{action: ActionReject, reason: reason}
}

// Modify substitutes replacement for the current proposal; every
// subsequent observer and the final execution see the replacement.
func Modify(replacement *ProposedTrade) TradeDecision {
	return TradeDecision{action: ActionModify, replacement: replacement}
}

// Action returns the verdict discriminator.
func (d TradeDecision) Action() DecisionAction { return d.action }

// Reason returns the rejection reason; empty unless Action is
// ActionReject.
func (d TradeDecision) Reason() string { return d.reason }

// Replacement returns the substituted proposal; nil unless Action is
// ActionModify.
func (d TradeDecision) Replacement() *ProposedTrade { return d.replacement }
