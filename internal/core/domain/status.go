package domain

// ApprovalStatus is the workflow state of a Loan.
//
// A cart has no approval status until it is submitted; it carries
// StatusNone and the Loan.IsCart flag.
type ApprovalStatus string

const (
	StatusNone      ApprovalStatus = ""
	StatusPending   ApprovalStatus = "pending"
	StatusApproved  ApprovalStatus = "approved"
	StatusRejected  ApprovalStatus = "rejected"
	StatusCancel    ApprovalStatus = "cancel"
	StatusTaken     ApprovalStatus = "taken"
	StatusReturnAll ApprovalStatus = "return-all"
)

// approvalTransitions is the exhaustive transition table:
// cart → pending → {approved, rejected, cancel}; pending/approved → taken;
// taken → return-all.
var approvalTransitions = map[ApprovalStatus][]ApprovalStatus{
	StatusNone:     {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected, StatusCancel, StatusTaken},
	StatusApproved: {StatusTaken},
	StatusTaken:    {StatusReturnAll},
}

// ParseApprovalStatus validates a status token from the outside world.
// Unknown tokens are rejected here, never deeper in business logic.
func ParseApprovalStatus(token string) (ApprovalStatus, error) {
	switch s := ApprovalStatus(token); s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancel, StatusTaken, StatusReturnAll:
		return s, nil
	default:
		return StatusNone, ErrInvalidStatus
	}
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s ApprovalStatus) CanTransitionTo(next ApprovalStatus) bool {
	for _, allowed := range approvalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s ApprovalStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancel, StatusReturnAll:
		return true
	}
	return false
}

// BorrowingStatus is the per-copy state of a BookBorrowing.
type BorrowingStatus string

const (
	BorrowingReserved BorrowingStatus = "reserved"
	BorrowingOnLoan   BorrowingStatus = "on-loan"
	BorrowingReturned BorrowingStatus = "returned"
)

// FineStatus tracks settlement of a Fine.
type FineStatus string

const (
	FineIncomplete FineStatus = "incomplete"
	FineCompleted  FineStatus = "completed"
)

// User roles
const (
	RoleBorrower  = "BORROWER"
	RoleLibrarian = "LIBRARIAN"
	RoleAdmin     = "ADMIN"
)
