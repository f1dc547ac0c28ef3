package procurement

// Status is the lifecycle state of a purchase order
type Status string

const (
	StatusDraft             Status = "draft"
	StatusPending           Status = "pending"
	StatusApproved          Status = "approved"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
	StatusClosed            Status = "closed"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{
	StatusDraft,
	StatusPending,
	StatusApproved,
	StatusPartiallyReceived,
	StatusReceived,
	StatusCancelled,
	StatusClosed,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave s
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusClosed
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// Action names a guarded operation on a purchase order
type Action string

const (
	ActionSubmit         Action = "submit_for_approval"
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionCancel         Action = "cancel"
	ActionClose          Action = "close"
	ActionReceive        Action = "receive"
	ActionAddLines       Action = "add_lines"
	ActionUpdateLine     Action = "update_line"
	ActionDeleteLine     Action = "delete_line"
	ActionUpdateHeader   Action = "update_header"
	ActionChangeSupplier Action = "change_supplier"
	ActionDelete         Action = "delete"
)

// Policy holds the configurable parts of the lifecycle
type Policy struct {
	// AllowCloseFromPartiallyReceived accepts a short-fulfilled order as final
	AllowCloseFromPartiallyReceived bool
}

// DefaultPolicy only closes fully received orders
func DefaultPolicy() Policy {
	return Policy{}
}

// rule describes where an action may start and, for status transitions, where it ends.
// target is empty for actions that do not move the status and for receive,
// whose target is derived from the quantity ledger.
type rule struct {
	from   []Status
	target Status
}

var editable = []Status{StatusDraft, StatusPending}

var transitionTable = map[Action]rule{
	ActionSubmit:         {from: []Status{StatusDraft}, target: StatusPending},
	ActionApprove:        {from: []Status{StatusPending}, target: StatusApproved},
	ActionReject:         {from: []Status{StatusPending}, target: StatusDraft},
	ActionCancel:         {from: []Status{StatusDraft, StatusPending, StatusApproved, StatusPartiallyReceived}, target: StatusCancelled},
	ActionClose:          {from: []Status{StatusReceived}, target: StatusClosed},
	ActionReceive:        {from: []Status{StatusApproved, StatusPartiallyReceived}},
	ActionAddLines:       {from: editable},
	ActionUpdateLine:     {from: editable},
	ActionDeleteLine:     {from: editable},
	ActionChangeSupplier: {from: editable},
	ActionDelete:         {from: editable},
	ActionUpdateHeader:   {from: []Status{StatusDraft, StatusPending, StatusApproved, StatusPartiallyReceived, StatusReceived}},
}

// AllowedFrom returns the statuses from which the action may run under the policy
func (p Policy) AllowedFrom(action Action) []Status {
	r, ok := transitionTable[action]
	if !ok {
		return nil
	}
	from := append([]Status(nil), r.from...)
	if action == ActionClose && p.AllowCloseFromPartiallyReceived {
		from = append(from, StatusPartiallyReceived)
	}
	return from
}

// Permits reports whether the action may run from the current status
func (p Policy) Permits(action Action, current Status) bool {
	for _, s := range p.AllowedFrom(action) {
		if s == current {
			return true
		}
	}
	return false
}

// Guard returns an InvalidTransitionError when the action may not run from current
func (p Policy) Guard(action Action, current Status) error {
	if !p.Permits(action, current) {
		return &InvalidTransitionError{Action: action, Current: current}
	}
	return nil
}

// Target returns the fixed destination status of a transition.
// ok is false for actions that do not move the status or whose target is derived.
func Target(action Action) (Status, bool) {
	r, found := transitionTable[action]
	if !found || r.target == "" {
		return "", false
	}
	return r.target, true
}

// PaymentStatus tracks settlement of the order total
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// IsValid reports whether p is a known payment status
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}
