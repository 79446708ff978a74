package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAddUserDuplicateID(t *testing.T) {
	lib := newTestLibrary(t)
	if err := lib.AddUser(&User{ID: 7, Name: "Alice", Role: RoleStudent}); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := lib.AddUser(&User{ID: 7, Name: "Impostor", Role: RoleFaculty})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("want ErrDuplicateID, got %v", err)
	}
	if lib.UserCount() != 1 {
		t.Fatalf("directory size must be unchanged, got %d", lib.UserCount())
	}
	u, _ := lib.FindUserByID(7)
	if u.Name != "Alice" {
		t.Fatalf("original user must be kept, got %s", u.Name)
	}
}

func TestRemoveAndUpdateUser(t *testing.T) {
	lib := newTestLibrary(t)
	lib.AddUser(&User{ID: 1, Name: "Alice", Role: RoleStudent})

	if err := lib.UpdateUser(1, "Alicia"); err != nil {
		t.Fatalf("update: %v", err)
	}
	u, _ := lib.FindUserByID(1)
	if u.Name != "Alicia" {
		t.Fatalf("rename not applied: %s", u.Name)
	}

	if err := lib.RemoveUser(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := lib.RemoveUser(1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if err := lib.UpdateUser(1, "Ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestUpdateBook(t *testing.T) {
	lib := newTestLibrary(t)
	addAvailableBook(lib, "111", "Old Title")

	if err := lib.UpdateBook("111", "New Title", ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	b, _ := lib.Catalog().FindByISBN("111")
	if b.Title != "New Title" || b.Author != "Author" {
		t.Fatalf("empty fields must keep current values: %+v", b)
	}

	if err := lib.UpdateBook("999", "X", "Y"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("want ErrBookNotFound, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lib := New(dir)

	b1 := &Book{Title: "The Go Programming Language", Author: "Alan Donovan", Publisher: "Addison-Wesley", Year: 2015, ISBN: "9780134190440"}
	b2 := &Book{Title: "Clean Code", Author: "Robert Martin", Publisher: "Prentice Hall", Year: 2008, ISBN: "9780132350884"}
	lib.Catalog().Add(b1)
	lib.Catalog().Add(b2)

	student := &User{ID: 101, Name: "Alice", PasswordHash: "hash-a", Role: RoleStudent}
	faculty := &User{ID: 201, Name: "Prof. Xavier", PasswordHash: "hash-x", Role: RoleFaculty}
	librarian := &User{ID: 301, Name: "Linda", PasswordHash: "hash-l", Role: RoleLibrarian}
	lib.AddUser(student)
	lib.AddUser(faculty)
	lib.AddUser(librarian)

	if _, err := student.Policy().Borrow(lib, student, "9780134190440", 100); err != nil {
		t.Fatalf("borrow: %v", err)
	}
	faculty.Account.Fines = 20
	faculty.Account.History = append(faculty.Account.History, HistoryRecord{Book: b2, BorrowDay: 1, DueDay: 31, ReturnDay: 40, FineIncurred: 0})

	if err := lib.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := New(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if reloaded.Catalog().Len() != 2 {
		t.Fatalf("want 2 books, got %d", reloaded.Catalog().Len())
	}
	rb1, ok := reloaded.Catalog().FindByISBN("9780134190440")
	if !ok || rb1.Status != StatusBorrowed || rb1.Title != b1.Title || rb1.Year != 2015 {
		t.Fatalf("book 1: %+v", rb1)
	}

	if reloaded.UserCount() != 3 {
		t.Fatalf("want 3 users, got %d", reloaded.UserCount())
	}
	rs, _ := reloaded.FindUserByID(101)
	if rs.Role != RoleStudent || rs.Name != "Alice" || rs.PasswordHash != "hash-a" {
		t.Fatalf("student: %+v", rs)
	}
	if len(rs.Account.Loans) != 1 {
		t.Fatalf("student loans: %+v", rs.Account.Loans)
	}
	// The reloaded loan must point at the reloaded book record, re-linked
	// by ISBN.
	if rs.Account.Loans[0].Book != rb1 {
		t.Fatalf("loan must reference the freshly loaded book")
	}
	if rs.Account.Loans[0].BorrowDay != 100 || rs.Account.Loans[0].DueDay != 115 {
		t.Fatalf("loan days: %+v", rs.Account.Loans[0])
	}

	rf, _ := reloaded.FindUserByID(201)
	if rf.Account.Fines != 20 || len(rf.Account.History) != 1 {
		t.Fatalf("faculty account: %+v", rf.Account)
	}
	if rf.Account.History[0].Book.ISBN != "9780132350884" {
		t.Fatalf("history book: %+v", rf.Account.History[0])
	}
}

func TestLoadReplacesInMemoryState(t *testing.T) {
	dir := t.TempDir()
	lib := New(dir)
	addAvailableBook(lib, "111", "Persisted")
	lib.AddUser(&User{ID: 1, Name: "Saved", Role: RoleStudent})
	if err := lib.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutate in-memory state after the save.
	addAvailableBook(lib, "222", "Unsaved")
	lib.AddUser(&User{ID: 2, Name: "Unsaved", Role: RoleStudent})

	if err := lib.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if lib.Catalog().Len() != 1 {
		t.Fatalf("load must replace the catalog, got %d books", lib.Catalog().Len())
	}
	if lib.UserCount() != 1 {
		t.Fatalf("load must replace the directory, got %d users", lib.UserCount())
	}
	if _, ok := lib.FindUserByID(2); ok {
		t.Fatalf("unsaved user must be gone after load")
	}
}

func TestLoadMissingFilesIsCleanFirstRun(t *testing.T) {
	lib := New(filepath.Join(t.TempDir(), "nonexistent"))
	if err := lib.Load(); err != nil {
		t.Fatalf("missing snapshots must not error: %v", err)
	}
	if lib.Catalog().Len() != 0 || lib.UserCount() != 0 {
		t.Fatalf("expected empty library")
	}
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	dir := t.TempDir()

	books := "Good Book,Author,Pub,2000,111,0\n" +
		"too,few,fields\n" +
		"Bad Year,Author,Pub,twenty,222,0\n" +
		"Bad Status,Author,Pub,2000,333,zero\n"
	if err := os.WriteFile(filepath.Join(dir, "books.txt"), []byte(books), 0o644); err != nil {
		t.Fatalf("write books: %v", err)
	}

	users := "1|Alice|hash|Student|0,0,,0,\n" +
		"not-a-number|Bob|hash|Student|0,0,,0,\n" +
		"3|Carol|hash|Wizard|0,0,,0,\n" +
		"4|Dave|hash\n"
	if err := os.WriteFile(filepath.Join(dir, "users.txt"), []byte(users), 0o644); err != nil {
		t.Fatalf("write users: %v", err)
	}

	lib := New(dir)
	if err := lib.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if lib.Catalog().Len() != 1 {
		t.Fatalf("want 1 valid book, got %d", lib.Catalog().Len())
	}
	if lib.UserCount() != 1 {
		t.Fatalf("want 1 valid user, got %d", lib.UserCount())
	}
	if _, ok := lib.FindUserByID(1); !ok {
		t.Fatalf("Alice should have loaded")
	}
}

func TestUsersSortedByID(t *testing.T) {
	lib := newTestLibrary(t)
	for _, id := range []int{30, 10, 20} {
		lib.AddUser(&User{ID: id, Role: RoleStudent})
	}
	users := lib.Users()
	if len(users) != 3 || users[0].ID != 10 || users[1].ID != 20 || users[2].ID != 30 {
		t.Fatalf("users not sorted: %v", []int{users[0].ID, users[1].ID, users[2].ID})
	}
}
