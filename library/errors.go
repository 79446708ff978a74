package library

import "errors"

// Sentinel errors for the failure taxonomy. None of these are fatal; callers
// report them and the session continues.
var (
	// Not-found conditions: the operation aborts with no state change.
	ErrBookNotFound = errors.New("book not found")
	ErrUserNotFound = errors.New("user not found")
	ErrLoanNotFound = errors.New("book not in borrowed list")

	// Policy violations: admission rules rejected the operation.
	ErrBookNotAvailable = errors.New("book is currently not available")
	ErrBookBorrowed     = errors.New("book is currently borrowed")
	ErrLoanLimit        = errors.New("borrowing limit reached")
	ErrOutstandingFines = errors.New("outstanding fines must be cleared before borrowing")
	ErrOverdueLoan      = errors.New("a loan is overdue beyond the allowed threshold")
	ErrNotPermitted     = errors.New("operation not permitted for this role")

	// Identity collisions: the candidate is discarded.
	ErrDuplicateID = errors.New("user ID already exists")
)
