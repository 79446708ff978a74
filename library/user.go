package library

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Borrowing policy parameters per role.
const (
	StudentLoanLimit      = 3
	StudentLoanPeriodDays = 15

	FacultyLoanLimit        = 5
	FacultyLoanPeriodDays   = 30
	FacultyOverdueGraceDays = 60
)

// User is a registered library user. The role is fixed at creation and
// selects the borrowing policy. Passwords are stored as bcrypt hashes; the
// hash is what gets persisted in the user record.
type User struct {
	ID           int
	Name         string
	PasswordHash string
	Role         Role
	Account      Account
}

// NewUser creates a user with a freshly hashed password.
func NewUser(id int, name, password string, role Role) (*User, error) {
	u := &User{ID: id, Name: name, Role: role}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored credential with a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Policy returns the borrowing policy for the user's role. The role set is
// closed, so an unknown tag falls back to the librarian policy, which
// permits nothing.
func (u *User) Policy() Policy {
	switch u.Role {
	case RoleStudent:
		return studentPolicy{}
	case RoleFaculty:
		return facultyPolicy{}
	default:
		return librarianPolicy{}
	}
}

// Policy is the role-specific capability set layered over the shared
// Account mechanics.
type Policy interface {
	// Borrow charges the book with the given ISBN to u as of today,
	// applying the role's admission rules.
	Borrow(lib *Library, u *User, isbn string, today int) (*Book, error)
	// Return resolves u's active loan for the ISBN as of today and yields
	// the fine incurred.
	Return(lib *Library, u *User, isbn string, today int) (*Book, float64, error)
	// Capabilities lists the operations the role's menu exposes.
	Capabilities() []string
}

// borrow is the shared mechanics once a role's admission rules have passed:
// resolve the book, check availability, mark it borrowed, record the loan.
func borrow(lib *Library, u *User, isbn string, today, periodDays int) (*Book, error) {
	b, ok := lib.Catalog().FindByISBN(isbn)
	if !ok {
		return nil, fmt.Errorf("borrow %s: %w", isbn, ErrBookNotFound)
	}
	if b.Status != StatusAvailable {
		return nil, fmt.Errorf("borrow %q: %w", b.Title, ErrBookNotAvailable)
	}
	b.Status = StatusBorrowed
	u.Account.AddActiveLoan(b, today, today+periodDays)
	return b, nil
}

// returnBook is the shared return mechanics. When the account has no
// matching active loan the error propagates and the book's status is left
// untouched, so a book can never be freed without a recorded loan.
func returnBook(lib *Library, u *User, isbn string, today int, exempt bool) (*Book, float64, error) {
	b, ok := lib.Catalog().FindByISBN(isbn)
	if !ok {
		return nil, 0, fmt.Errorf("return %s: %w", isbn, ErrBookNotFound)
	}
	fine, err := u.Account.ReturnLoan(b, today, exempt)
	if err != nil {
		return nil, 0, err
	}
	b.Status = StatusAvailable
	return b, fine, nil
}

// studentPolicy: up to 3 concurrent loans, 15-day period, blocked entirely
// while any fine is outstanding, overdue returns are fined.
type studentPolicy struct{}

func (studentPolicy) Borrow(lib *Library, u *User, isbn string, today int) (*Book, error) {
	if u.Account.ActiveLoanCount() >= StudentLoanLimit {
		return nil, fmt.Errorf("students may borrow at most %d books: %w", StudentLoanLimit, ErrLoanLimit)
	}
	if u.Account.Fines > 0 {
		return nil, ErrOutstandingFines
	}
	return borrow(lib, u, isbn, today, StudentLoanPeriodDays)
}

func (studentPolicy) Return(lib *Library, u *User, isbn string, today int) (*Book, float64, error) {
	return returnBook(lib, u, isbn, today, false)
}

func (studentPolicy) Capabilities() []string {
	return []string{"borrow", "return", "account", "pay fines", "list books", "search books"}
}

// facultyPolicy: up to 5 concurrent loans, 30-day period, blocked only while
// a loan is more than 60 days overdue, returns never accrue fines.
type facultyPolicy struct{}

func (facultyPolicy) Borrow(lib *Library, u *User, isbn string, today int) (*Book, error) {
	if u.Account.ActiveLoanCount() >= FacultyLoanLimit {
		return nil, fmt.Errorf("faculty may borrow at most %d books: %w", FacultyLoanLimit, ErrLoanLimit)
	}
	if u.Account.HasOverdueBeyond(today, FacultyOverdueGraceDays) {
		return nil, fmt.Errorf("a book is overdue by more than %d days: %w", FacultyOverdueGraceDays, ErrOverdueLoan)
	}
	return borrow(lib, u, isbn, today, FacultyLoanPeriodDays)
}

func (facultyPolicy) Return(lib *Library, u *User, isbn string, today int) (*Book, float64, error) {
	return returnBook(lib, u, isbn, today, true)
}

func (facultyPolicy) Capabilities() []string {
	return []string{"borrow", "return", "account", "list books", "search books"}
}

// librarianPolicy: circulation is disabled; librarians manage the catalog
// and the user directory instead.
type librarianPolicy struct{}

func (librarianPolicy) Borrow(*Library, *User, string, int) (*Book, error) {
	return nil, fmt.Errorf("librarians cannot borrow books: %w", ErrNotPermitted)
}

func (librarianPolicy) Return(*Library, *User, string, int) (*Book, float64, error) {
	return nil, 0, fmt.Errorf("librarians do not borrow books: %w", ErrNotPermitted)
}

func (librarianPolicy) Capabilities() []string {
	return []string{
		"add book", "remove book", "update book",
		"add user", "remove user", "update user",
		"list books", "list users", "search books", "circulation log",
	}
}
