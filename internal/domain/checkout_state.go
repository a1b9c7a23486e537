package domain

type CheckoutPhase string

const (
	CheckoutIdle       CheckoutPhase = "IDLE"
	CheckoutPreparing  CheckoutPhase = "PREPARING"
	CheckoutReadyToPay CheckoutPhase = "READY_TO_PAY"
	CheckoutConfirming CheckoutPhase = "CONFIRMING"
	CheckoutSucceeded  CheckoutPhase = "SUCCEEDED"
	CheckoutFailed     CheckoutPhase = "FAILED"
)

// IsTerminal reports whether the checkout attempt has reached its final
// outcome. A new attempt may still start from a terminal phase.
func (p CheckoutPhase) IsTerminal() bool {
	return p == CheckoutSucceeded || p == CheckoutFailed
}

// String representation (for logging)
func (p CheckoutPhase) String() string {
	return string(p)
}

// checkoutTransitions is the legal-move table of the checkout lifecycle.
// Confirming may fall back to ReadyToPay when the processor demands an
// extra user action (3DS and the like).
var checkoutTransitions = map[CheckoutPhase][]CheckoutPhase{
	CheckoutIdle:       {CheckoutPreparing, CheckoutFailed},
	CheckoutPreparing:  {CheckoutReadyToPay, CheckoutFailed},
	CheckoutReadyToPay: {CheckoutConfirming, CheckoutFailed},
	CheckoutConfirming: {CheckoutSucceeded, CheckoutReadyToPay, CheckoutFailed},
	CheckoutSucceeded:  {CheckoutPreparing},
	CheckoutFailed:     {CheckoutPreparing},
}

// CanTransitionTo reports whether moving from one checkout phase to another
// is legal. A reset to Idle is always legal and bypasses this table.
func CanTransitionTo(from, to CheckoutPhase) bool {
	if to == CheckoutIdle {
		return true
	}
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
