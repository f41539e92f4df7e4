package orchestrator

import "errors"

// Action names a venue write flow.
type Action string

const (
	ActionApprove Action = "approve"
	ActionCreate  Action = "create"
	ActionCancel  Action = "cancel"
	ActionRefund  Action = "refund"
)

// State is the observable position of a write flow. Transitions are
// driven only by confirmed venue observations; a flow never reports a
// terminal state the venue has not confirmed.
type State string

const (
	StateIdle               State = "idle"
	StateCheckingAllowance  State = "checking_allowance"
	StateNeedsApproval      State = "needs_approval"
	StateApproving          State = "approving"
	StateAllowanceConfirmed State = "allowance_confirmed"
	StateCreating           State = "creating"
	StateCreated            State = "created"
	StateCancelling         State = "cancelling"
	StateCancelled          State = "cancelled"
	StateRefunding          State = "refunding"
	StateRefunded           State = "refunded"
	StateRejected           State = "rejected"
	StateStuck              State = "stuck"
)

var (
	// ErrInFlight indicates the same flow is already running for this
	// intent. Each (intent, action) pair admits one flow at a time.
	ErrInFlight = errors.New("flow already in flight for this intent")

	// ErrStuck indicates a submission was not mined within the timeout.
	// The transaction may still land later; the resync loop will pick
	// up whatever the venue eventually records.
	ErrStuck = errors.New("transaction not mined within timeout")

	// ErrInsufficientBalance indicates the account cannot fund the intent.
	ErrInsufficientBalance = errors.New("source asset balance below intent amount")
)
