package library

// BookStatus tracks a book's availability. The integer values are part of
// the on-disk book record format and must stay stable.
type BookStatus int

const (
	StatusAvailable BookStatus = iota
	StatusBorrowed
	StatusReserved
)

// String renders the status for display.
func (s BookStatus) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusBorrowed:
		return "Borrowed"
	case StatusReserved:
		return "Reserved"
	default:
		return "Unknown"
	}
}

// Book represents one catalog entry. The ISBN is the stable identifier used
// to re-link accounts to books across a save/load cycle.
type Book struct {
	Title     string
	Author    string
	Publisher string
	Year      int
	ISBN      string
	Status    BookStatus
}

// Role is the closed set of user kinds. The string values are the type tags
// written to the user record on disk.
type Role string

const (
	RoleStudent   Role = "Student"
	RoleFaculty   Role = "Faculty"
	RoleLibrarian Role = "Librarian"
)

// ActiveLoan is a book currently charged to an account. Days are integer
// days since the Unix epoch.
type ActiveLoan struct {
	Book      *Book
	BorrowDay int
	DueDay    int
}

// HistoryRecord is a completed loan kept for audit, including the fine it
// incurred (0 for fine-exempt returns).
type HistoryRecord struct {
	Book         *Book
	BorrowDay    int
	DueDay       int
	ReturnDay    int
	FineIncurred float64
}
