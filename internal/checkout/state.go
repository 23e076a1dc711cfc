package checkout

import (
	"fmt"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/service"
)

type State string

const (
	StateIdle                State = "idle"
	StateOrderRequested      State = "order_requested"
	StateAwaitingProviderUI  State = "awaiting_provider_ui"
	StateProviderSucceeded   State = "provider_succeeded"
	StateEntitlementRecorded State = "entitlement_recorded"
	StateUnlocked            State = "unlocked"
	StateFailed              State = "failed"
)

func (s State) Terminal() bool {
	return s == StateUnlocked || s == StateFailed
}

type Reason string

const (
	ReasonListingUnavailable          Reason = "ListingUnavailable"
	ReasonOrderCreationFailed         Reason = "OrderCreationFailed"
	ReasonPaymentAborted              Reason = "PaymentAborted"
	ReasonConfirmationRejected        Reason = "ConfirmationRejected"
	ReasonPaymentRecordedButNotSaved  Reason = "PaymentRecordedButNotSaved"
	ReasonRecordedButAssetUnavailable Reason = "RecordedButAssetUnavailable"
)

// MoneyMayHaveMoved reports whether the buyer may have been charged, in which case the
// failure needs reconciliation rather than a retry.
func (r Reason) MoneyMayHaveMoved() bool {
	return r == ReasonPaymentRecordedButNotSaved || r == ReasonRecordedButAssetUnavailable
}

// Failure is the Failed(reason) terminal state. It unwraps to the collaborator error.
type Failure struct {
	Reason Reason
	// State the attempt was in when it failed.
	State State
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("checkout failed (%s) in %s: %v", f.Reason, f.State, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Attempt is one purchase attempt by one user for one listing. It is never reused: a
// new try starts from a fresh Attempt with a new order.
type Attempt struct {
	UserID       string
	ListingID    string
	State        State
	Listing      *model.Listing
	Intent       *model.OrderIntent
	Confirmation *model.PaymentConfirmation
	Access       *service.Access
	Failure      *Failure
}

func newAttempt(userID, listingID string) *Attempt {
	return &Attempt{UserID: userID, ListingID: listingID, State: StateIdle}
}

func (a *Attempt) transition(to State) {
	a.State = to
}

func (a *Attempt) fail(reason Reason, err error) error {
	a.Failure = &Failure{Reason: reason, State: a.State, Err: err}
	a.State = StateFailed
	return a.Failure
}
