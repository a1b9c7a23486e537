package checkout

import "context"

// PresentOutcome is the single completion a payment presenter reports.
type PresentOutcome int

const (
	OutcomeCompleted PresentOutcome = iota
	OutcomeCanceled
	OutcomeFailed
)

type PresentResult struct {
	Outcome PresentOutcome
	Reason  string // set for OutcomeFailed
}

type PresenterConfig struct {
	MerchantName string
}

// Presenter is the opaque payment-sheet boundary: given a client secret it
// drives the external payment UI and reports exactly one outcome. Present
// must honor ctx cancellation, which the orchestrator triggers on Reset and
// on user switch.
type Presenter interface {
	Present(ctx context.Context, clientSecret string, cfg PresenterConfig) (PresentResult, error)
}
