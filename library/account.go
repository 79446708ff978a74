package library

import (
	"fmt"
	"strconv"
	"strings"
)

// FineRatePerDay is the charge applied per overdue day on a non-exempt
// return.
const FineRatePerDay = 10.0

// Account tracks one user's active loans, fine balance, and completed-loan
// history. Book links are in-memory pointers at runtime and weak ISBN
// references on disk.
type Account struct {
	Fines   float64
	Loans   []ActiveLoan
	History []HistoryRecord
}

// AddActiveLoan appends a loan. The caller (borrowing policy) is responsible
// for ensuring the book is not already charged to another account.
func (a *Account) AddActiveLoan(b *Book, borrowDay, dueDay int) {
	a.Loans = append(a.Loans, ActiveLoan{Book: b, BorrowDay: borrowDay, DueDay: dueDay})
}

// ReturnLoan resolves the first active loan matching b. The overdue fine is
// max(0, returnDay-dueDay) * FineRatePerDay unless the return is exempt, in
// which case the history records a fine of 0 regardless of lateness. The
// fine (if any) is added to the running balance and the loan moves to
// history. ErrLoanNotFound is returned, with no state change, when b is not
// in the active list.
func (a *Account) ReturnLoan(b *Book, returnDay int, exempt bool) (float64, error) {
	for i, loan := range a.Loans {
		if loan.Book != b {
			continue
		}
		overdue := returnDay - loan.DueDay
		if overdue < 0 {
			overdue = 0
		}
		var fine float64
		if !exempt {
			fine = float64(overdue) * FineRatePerDay
			a.Fines += fine
		}
		a.History = append(a.History, HistoryRecord{
			Book:         loan.Book,
			BorrowDay:    loan.BorrowDay,
			DueDay:       loan.DueDay,
			ReturnDay:    returnDay,
			FineIncurred: fine,
		})
		a.Loans = append(a.Loans[:i], a.Loans[i+1:]...)
		return fine, nil
	}
	return 0, fmt.Errorf("return %s: %w", b.ISBN, ErrLoanNotFound)
}

// ActiveLoanCount reports how many books are currently charged to the
// account.
func (a *Account) ActiveLoanCount() int { return len(a.Loans) }

// HasOverdueBeyond reports whether any active loan is overdue by more than
// thresholdDays as of currentDay.
func (a *Account) HasOverdueBeyond(currentDay, thresholdDays int) bool {
	for _, loan := range a.Loans {
		if currentDay-loan.DueDay > thresholdDays {
			return true
		}
	}
	return false
}

// PayFines clears the outstanding balance and reports the amount paid.
func (a *Account) PayFines() float64 {
	paid := a.Fines
	a.Fines = 0
	return paid
}

// Serialize encodes the account as a single line of text:
//
//	fines,activeCount,activeRecords,historyCount,historyRecords
//
// where activeRecords is ";"-joined "isbn:borrowDay:dueDay" and
// historyRecords is ";"-joined "isbn:borrowDay:dueDay:returnDay:fine".
// Books are persisted by ISBN only; pointers are re-derived at load time.
func (a *Account) Serialize() string {
	var sb strings.Builder
	sb.WriteString(formatAmount(a.Fines))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(len(a.Loans)))
	sb.WriteByte(',')
	for i, loan := range a.Loans {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, "%s:%d:%d", loan.Book.ISBN, loan.BorrowDay, loan.DueDay)
	}
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(len(a.History)))
	sb.WriteByte(',')
	for i, h := range a.History {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, "%s:%d:%d:%d:%s", h.Book.ISBN, h.BorrowDay, h.DueDay, h.ReturnDay, formatAmount(h.FineIncurred))
	}
	return sb.String()
}

// Deserialize parses the Serialize format and resolves each ISBN against
// cat. Records whose ISBN no longer resolves are dropped without error: the
// book may have been removed since the snapshot was taken. A record with
// fewer than five top-level fields is invalid and leaves the account in its
// fresh state.
func (a *Account) Deserialize(data string, cat *Catalog) {
	a.Fines = 0
	a.Loans = nil
	a.History = nil

	parts := strings.SplitN(data, ",", 5)
	if len(parts) < 5 {
		return
	}
	fines, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return
	}
	a.Fines = fines

	if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
		for _, rec := range strings.Split(parts[2], ";") {
			fields := strings.Split(rec, ":")
			if len(fields) != 3 {
				continue
			}
			borrowDay, err1 := strconv.Atoi(fields[1])
			dueDay, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				continue
			}
			if b, ok := cat.FindByISBN(fields[0]); ok {
				a.Loans = append(a.Loans, ActiveLoan{Book: b, BorrowDay: borrowDay, DueDay: dueDay})
			}
		}
	}

	if n, err := strconv.Atoi(parts[3]); err == nil && n > 0 {
		for _, rec := range strings.Split(parts[4], ";") {
			fields := strings.Split(rec, ":")
			if len(fields) != 5 {
				continue
			}
			borrowDay, err1 := strconv.Atoi(fields[1])
			dueDay, err2 := strconv.Atoi(fields[2])
			returnDay, err3 := strconv.Atoi(fields[3])
			fine, err4 := strconv.ParseFloat(fields[4], 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				continue
			}
			if b, ok := cat.FindByISBN(fields[0]); ok {
				a.History = append(a.History, HistoryRecord{
					Book:         b,
					BorrowDay:    borrowDay,
					DueDay:       dueDay,
					ReturnDay:    returnDay,
					FineIncurred: fine,
				})
			}
		}
	}
}

// formatAmount renders a monetary amount without a forced decimal point, so
// whole amounts round-trip as plain integers.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
