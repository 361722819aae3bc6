package domain

import "time"

// Status represents the lifecycle state of a transfer.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Event represents an action that triggers a state transition.
type Event string

const (
	// EventCreated is published when a transfer is created; it does not
	// move the state machine (transfers always start pending).
	EventCreated Event = "created"

	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// Transition defines a valid state change: an event moves a transfer from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the transfer lifecycle.
// Completed and cancelled are terminal; nothing leaves them.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventComplete, Src: StatusPending, Dst: StatusCompleted},
	{Event: EventCancel, Src: StatusPending, Dst: StatusCancelled},
}

// Reason classifies why a transfer was requested.
type Reason string

const (
	ReasonRestock   Reason = "restock"
	ReasonDemand    Reason = "demand"
	ReasonRebalance Reason = "rebalance"
	ReasonEmergency Reason = "emergency"
	ReasonOther     Reason = "other"
)

// Reasons lists every valid transfer reason.
var Reasons = []Reason{ReasonRestock, ReasonDemand, ReasonRebalance, ReasonEmergency, ReasonOther}

// ValidReason reports whether r is a known reason.
func ValidReason(r Reason) bool {
	for _, known := range Reasons {
		if r == known {
			return true
		}
	}
	return false
}

// MaxNotesLength bounds the free-text notes field.
const MaxNotesLength = 500

// Transfer is the core domain entity: a request to move a quantity of one
// product from one branch to another. Creating a transfer reserves stock at
// the source branch; completing it delivers the quantity to the destination;
// cancelling it returns the quantity to the source.
type Transfer struct {
	ID          string
	ProductID   string
	FromBranch  string
	ToBranch    string
	Quantity    int
	Reason      Reason
	Notes       string
	Status      Status
	CreatedBy   string
	CreatedAt   time.Time
	CompletedAt *time.Time
	CompletedBy *string

	// Display fields joined from referenced entities. Populated by the
	// repository on reads; empty on a Transfer that has not been persisted.
	ProductName    string
	FromBranchName string
	ToBranchName   string
	CreatedByName  string
}

// NewTransfer creates a transfer in the initial "pending" state.
func NewTransfer(id, productID, fromBranch, toBranch string, quantity int, reason Reason, notes, createdBy string) Transfer {
	return Transfer{
		ID:         id,
		ProductID:  productID,
		FromBranch: fromBranch,
		ToBranch:   toBranch,
		Quantity:   quantity,
		Reason:     reason,
		Notes:      notes,
		Status:     StatusPending,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC(),
	}
}
