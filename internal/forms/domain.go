// Package forms implements the entity-form workflow shared by every admin
// screen: a draft record validated by a ruleset, a line-item selection feeding
// a derived total, cross-references resolved against cached reference data,
// and a submit state machine talking to the persistence collaborator.
package forms

import "errors"

// State enumerates form lifecycle states.
type State string

const (
	// StateEditing accepts draft edits and is the only state submit may leave from.
	StateEditing State = "EDITING"
	// StateSubmitting marks a submission in flight; further submits are rejected.
	StateSubmitting State = "SUBMITTING"
	// StateSuccess is terminal; the draft has been handed to the collaborator.
	StateSuccess State = "SUCCESS"
)

// LineItem is one product/quantity/price tuple inside an income or outcome
// draft. It has no lifecycle of its own. Quantity must be positive and the
// unit price non-negative for the draft to submit.
type LineItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// ErrSubmitInFlight is returned when submit is triggered while a previous
// submission has not settled yet.
var ErrSubmitInFlight = errors.New("forms: submission already in flight")

// ErrFormClosed indicates the form was submitted or dismissed already.
var ErrFormClosed = errors.New("forms: form is closed")

// ErrConfirmRequired indicates cancellation was requested without the
// confirmation step.
var ErrConfirmRequired = errors.New("forms: cancel requires confirmation")

// ErrStaleGeneration indicates an asynchronous result arrived for a dismissed
// form instance and was discarded.
var ErrStaleGeneration = errors.New("forms: form dismissed, result discarded")

// ErrUnknownProduct indicates a selection row referenced a product outside the
// catalog.
var ErrUnknownProduct = errors.New("forms: product not in catalog")
