package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"library-system/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive library session",
	Run:   runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// session carries the state of one interactive run.
type session struct {
	lib   *library.Library
	audit *library.AuditLog
	sc    *bufio.Scanner
	eof   bool
}

// today is the current integer day since the Unix epoch, the unit all loan
// arithmetic uses.
func today() int {
	return int(time.Now().Unix() / 86400)
}

func runShell(cmd *cobra.Command, args []string) {
	cfg := resolveConfig()

	lib := library.New(cfg.DataDir)
	if err := lib.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load saved data: %v\n", err)
	}

	audit, err := library.NewAuditLog(cfg.AuditDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: circulation log unavailable: %v\n", err)
		audit = nil
	} else {
		defer audit.Close()
	}

	s := &session{lib: lib, audit: audit, sc: bufio.NewScanner(os.Stdin)}
	s.seedIfEmpty()

	fmt.Println("Welcome to the Library Management System!")

	for {
		fmt.Println("\n===== Main Menu =====")
		fmt.Println("1. Login\n2. Register New User\n3. List All Books\n4. Help/Instructions\n5. Exit")
		choice := s.readLine("Enter your choice: ")
		if s.eof {
			choice = "5"
		}
		switch choice {
		case "1":
			s.handleLogin()
		case "2":
			s.handleRegister()
		case "3":
			s.handleListBooks()
		case "4":
			s.printHelp()
		case "5":
			fmt.Println("Exiting the system. Goodbye!")
			if err := lib.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save data: %v\n", err)
			} else {
				fmt.Println("Library data saved.")
			}
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

// seedIfEmpty populates first-run data so a fresh install is usable.
func (s *session) seedIfEmpty() {
	cat := s.lib.Catalog()
	if cat.Len() == 0 {
		seed := []*library.Book{
			{Title: "The Go Programming Language", Author: "Alan A. A. Donovan", Publisher: "Addison-Wesley", Year: 2015, ISBN: "9780134190440"},
			{Title: "Clean Code", Author: "Robert C. Martin", Publisher: "Prentice Hall", Year: 2008, ISBN: "9780132350884"},
			{Title: "Design Patterns", Author: "Erich Gamma et al.", Publisher: "Addison-Wesley", Year: 1994, ISBN: "9780201633610"},
			{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Publisher: "Addison-Wesley", Year: 1999, ISBN: "9780201616224"},
			{Title: "Introduction to Algorithms", Author: "Cormen et al.", Publisher: "MIT Press", Year: 2009, ISBN: "9780262033848"},
			{Title: "Modern Operating Systems", Author: "Andrew S. Tanenbaum", Publisher: "Pearson", Year: 2014, ISBN: "9780133591620"},
			{Title: "Computer Networks", Author: "Andrew S. Tanenbaum", Publisher: "Pearson", Year: 2010, ISBN: "9780132126953"},
		}
		for _, b := range seed {
			cat.Add(b)
		}
	}
	if s.lib.UserCount() == 0 {
		seedUsers := []struct {
			id   int
			name string
			role library.Role
		}{
			{101, "Alice", library.RoleStudent},
			{102, "Bob", library.RoleStudent},
			{201, "Prof. Xavier", library.RoleFaculty},
			{301, "Librarian Linda", library.RoleLibrarian},
		}
		for _, su := range seedUsers {
			u, err := library.NewUser(su.id, su.name, "pass123", su.role)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not seed user %s: %v\n", su.name, err)
				continue
			}
			if err := s.lib.AddUser(u); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
	}
}

// ------------------ Input helpers ------------------

func (s *session) readLine(prompt string) string {
	fmt.Print(prompt)
	if !s.sc.Scan() {
		s.eof = true
		return ""
	}
	return strings.TrimSpace(s.sc.Text())
}

func (s *session) readInt(prompt string) (int, bool) {
	raw := s.readLine(prompt)
	if s.eof {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", raw)
		return 0, false
	}
	return n, true
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

// ------------------ Authentication & registration ------------------

func (s *session) handleLogin() {
	id, ok := s.readInt("Enter your User ID: ")
	if !ok {
		return
	}
	user, found := s.lib.FindUserByID(id)
	if !found {
		answer := s.readLine("User ID not found. Are you new here and want to register? (Y/N): ")
		if strings.EqualFold(answer, "y") {
			s.handleRegister()
		}
		return
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if !user.CheckPassword(password) {
		fmt.Println("Invalid password. Returning to main menu.")
		return
	}

	fmt.Printf("Welcome, %s!\n", user.Name)
	switch user.Role {
	case library.RoleLibrarian:
		s.librarianMenu(user)
	default:
		s.patronMenu(user)
	}
}

func (s *session) handleRegister() {
	fmt.Println("\n--- New User Registration ---")
	fmt.Println("Select user type:\n1. Student\n2. Faculty")
	var role library.Role
	switch s.readLine("Enter choice: ") {
	case "1":
		role = library.RoleStudent
	case "2":
		role = library.RoleFaculty
	default:
		fmt.Println("Invalid user type selected.")
		return
	}

	id, ok := s.readInt("Enter a new User ID (number): ")
	if !ok {
		return
	}
	if _, exists := s.lib.FindUserByID(id); exists {
		fmt.Println("User ID already exists. Registration aborted.")
		return
	}
	name := s.readLine("Enter your name: ")
	password, err := readPassword("Enter your password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if password == "" {
		fmt.Println("Error: Password cannot be empty")
		return
	}

	user, err := library.NewUser(id, name, password, role)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := s.lib.AddUser(user); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%s registered successfully!\n", role)
}

// ------------------ Patron menus (Student / Faculty) ------------------

func (s *session) patronMenu(user *library.User) {
	for {
		fmt.Printf("\n===== %s Menu =====\n", user.Role)
		options := []string{"Borrow Book", "Return Book", "View Account Details"}
		if user.Role == library.RoleStudent {
			options = append(options, "Pay Fines")
		}
		options = append(options, "List All Books", "Search Books", "Logout")
		for i, opt := range options {
			fmt.Printf("%d. %s\n", i+1, opt)
		}

		choice, ok := s.readInt("Enter your choice: ")
		if s.eof {
			return
		}
		if !ok || choice < 1 || choice > len(options) {
			fmt.Println("Invalid choice. Please try again.")
			continue
		}
		switch options[choice-1] {
		case "Borrow Book":
			s.handleBorrow(user)
		case "Return Book":
			s.handleReturn(user)
		case "View Account Details":
			s.printAccount(user)
		case "Pay Fines":
			if paid := user.Account.PayFines(); paid > 0 {
				fmt.Printf("Paying fine of %.0f rupees.\n", paid)
			} else {
				fmt.Println("No outstanding fines.")
			}
		case "List All Books":
			s.handleListBooks()
		case "Search Books":
			s.handleSearchBooks()
		case "Logout":
			fmt.Println("Logging out...")
			return
		}
	}
}

func (s *session) handleBorrow(user *library.User) {
	isbn := s.readLine("Enter ISBN of the book to borrow: ")
	day := today()
	book, err := user.Policy().Borrow(s.lib, user, isbn, day)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Book %q borrowed successfully. Due on day %d.\n", book.Title, user.Account.Loans[len(user.Account.Loans)-1].DueDay)
	s.recordAudit(func() error { return s.audit.RecordBorrow(user.ID, book.ISBN, day) })
}

func (s *session) handleReturn(user *library.User) {
	isbn := s.readLine("Enter ISBN of the book to return: ")
	day := today()
	book, fine, err := user.Policy().Return(s.lib, user, isbn, day)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Book %q returned successfully.\n", book.Title)
	if fine > 0 {
		fmt.Printf("Overdue fine incurred: %.0f rupees.\n", fine)
	}
	s.recordAudit(func() error { return s.audit.RecordReturn(user.ID, book.ISBN, day, fine) })
}

// recordAudit appends to the circulation log when it is available; a
// logging failure never disturbs the session.
func (s *session) recordAudit(record func() error) {
	if s.audit == nil {
		return
	}
	if err := record(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record circulation event: %v\n", err)
	}
}

func (s *session) printAccount(user *library.User) {
	acct := &user.Account
	if len(acct.Loans) == 0 {
		fmt.Println("No books currently borrowed.")
	} else {
		fmt.Println("Currently Borrowed Books:")
		for _, loan := range acct.Loans {
			fmt.Printf("- %s (Borrowed on day %d, Due on day %d)\n", loan.Book.Title, loan.BorrowDay, loan.DueDay)
		}
	}
	if len(acct.History) == 0 {
		fmt.Println("No borrowing history available.")
	} else {
		fmt.Println("Borrowing History:")
		for _, h := range acct.History {
			fmt.Printf("- %s (Borrowed on day %d, Due on day %d, Returned on day %d, Fine: %.0f)\n",
				h.Book.Title, h.BorrowDay, h.DueDay, h.ReturnDay, h.FineIncurred)
		}
	}
	fmt.Printf("Outstanding Fines: %.0f rupees\n", acct.Fines)
}

// ------------------ Shared book views ------------------

func (s *session) handleListBooks() {
	if s.lib.Catalog().Len() == 0 {
		fmt.Println("No books in the library.")
		return
	}
	fmt.Printf("%-35s %-25s %-20s %-6s %-15s %s\n", "Title", "Author", "Publisher", "Year", "ISBN", "Status")
	fmt.Println(strings.Repeat("-", 115))
	for b := range s.lib.Catalog().Books() {
		fmt.Printf("%-35s %-25s %-20s %-6d %-15s %s\n",
			truncateString(b.Title, 35), truncateString(b.Author, 25), truncateString(b.Publisher, 20),
			b.Year, b.ISBN, b.Status)
	}
}

func (s *session) handleSearchBooks() {
	fmt.Println("\nSearch Books by:\n1. Title\n2. Author\n3. ISBN")
	var field library.SearchField
	switch s.readLine("Enter choice: ") {
	case "1":
		field = library.SearchByTitle
	case "2":
		field = library.SearchByAuthor
	case "3":
		field = library.SearchByISBN
	default:
		fmt.Println("Invalid choice.")
		return
	}
	query := s.readLine("Enter search query: ")

	found := false
	for b := range s.lib.Catalog().Search(field, query) {
		fmt.Printf("%-35s %-25s %-15s %s\n", truncateString(b.Title, 35), truncateString(b.Author, 25), b.ISBN, b.Status)
		found = true
	}
	if !found {
		fmt.Println("No matching books found.")
	}
}

// ------------------ Librarian menu ------------------

func (s *session) librarianMenu(user *library.User) {
	for {
		fmt.Println("\n===== Librarian Menu =====")
		fmt.Println("1. Add Book\n2. Remove Book\n3. Update Book\n4. Add User\n5. Remove User\n6. Update User\n7. List Books\n8. List Users\n9. Search Books\n10. Circulation Log\n11. Logout")
		choice := s.readLine("Enter your choice: ")
		if s.eof {
			return
		}
		switch choice {
		case "1":
			s.handleAddBook()
		case "2":
			s.handleRemoveBook()
		case "3":
			s.handleUpdateBook()
		case "4":
			s.handleAddUser()
		case "5":
			s.handleRemoveUser()
		case "6":
			s.handleUpdateUser()
		case "7":
			s.handleListBooks()
		case "8":
			s.handleListUsers()
		case "9":
			s.handleSearchBooks()
		case "10":
			s.handleCirculationLog()
		case "11":
			fmt.Println("Logging out...")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

func (s *session) handleAddBook() {
	title := s.readLine("Enter book title: ")
	author := s.readLine("Enter author: ")
	publisher := s.readLine("Enter publisher: ")
	year, ok := s.readInt("Enter publication year: ")
	if !ok {
		return
	}
	isbn := s.readLine("Enter ISBN: ")
	s.lib.Catalog().Add(&library.Book{Title: title, Author: author, Publisher: publisher, Year: year, ISBN: isbn, Status: library.StatusAvailable})
	fmt.Println("Book added successfully.")
}

func (s *session) handleRemoveBook() {
	isbn := s.readLine("Enter ISBN of the book to remove: ")
	if err := s.lib.Catalog().Remove(isbn); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Book with ISBN %s removed.\n", isbn)
}

func (s *session) handleUpdateBook() {
	isbn := s.readLine("Enter ISBN of the book to update: ")
	book, found := s.lib.Catalog().FindByISBN(isbn)
	if !found {
		fmt.Println("Book not found.")
		return
	}
	newTitle := s.readLine(fmt.Sprintf("Enter new title (or press enter to keep %q): ", book.Title))
	newAuthor := s.readLine(fmt.Sprintf("Enter new author (or press enter to keep %q): ", book.Author))
	if err := s.lib.UpdateBook(isbn, newTitle, newAuthor); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Book updated successfully.")
}

func (s *session) handleAddUser() {
	fmt.Println("Enter type of user to add (1. Student, 2. Faculty):")
	var role library.Role
	switch s.readLine("Enter choice: ") {
	case "1":
		role = library.RoleStudent
	case "2":
		role = library.RoleFaculty
	default:
		fmt.Println("Invalid type.")
		return
	}
	id, ok := s.readInt("Enter new user ID: ")
	if !ok {
		return
	}
	name := s.readLine("Enter user name: ")
	password, err := readPassword(fmt.Sprintf("Enter password for %s: ", name))
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	user, err := library.NewUser(id, name, password, role)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := s.lib.AddUser(user); err != nil {
		if errors.Is(err, library.ErrDuplicateID) {
			fmt.Printf("User with ID %d already exists. Cannot add duplicate.\n", id)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		return
	}
	fmt.Printf("%s added successfully.\n", role)
}

func (s *session) handleRemoveUser() {
	id, ok := s.readInt("Enter user ID to remove: ")
	if !ok {
		return
	}
	if err := s.lib.RemoveUser(id); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("User with ID %d removed.\n", id)
}

func (s *session) handleUpdateUser() {
	id, ok := s.readInt("Enter user ID to update: ")
	if !ok {
		return
	}
	name := s.readLine(fmt.Sprintf("Enter new name for user with ID %d: ", id))
	if err := s.lib.UpdateUser(id, name); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("User updated successfully.")
}

func (s *session) handleListUsers() {
	users := s.lib.Users()
	if len(users) == 0 {
		fmt.Println("No users registered.")
		return
	}
	fmt.Printf("%-6s %-30s %-10s %-6s %s\n", "ID", "Name", "Role", "Loans", "Fines")
	fmt.Println(strings.Repeat("-", 65))
	for _, u := range users {
		fmt.Printf("%-6d %-30s %-10s %-6d %.0f\n", u.ID, truncateString(u.Name, 30), u.Role, u.Account.ActiveLoanCount(), u.Account.Fines)
	}
}

func (s *session) handleCirculationLog() {
	if s.audit == nil {
		fmt.Println("Circulation log is not available.")
		return
	}
	events, err := s.audit.Recent(20)
	if err != nil {
		fmt.Printf("Error reading circulation log: %v\n", err)
		return
	}
	if len(events) == 0 {
		fmt.Println("No circulation events recorded.")
		return
	}
	fmt.Printf("%-6s %-8s %-15s %-8s %-6s %s\n", "ID", "User", "ISBN", "Action", "Day", "Fine")
	fmt.Println(strings.Repeat("-", 55))
	for _, e := range events {
		fmt.Printf("%-6d %-8d %-15s %-8s %-6d %.0f\n", e.ID, e.UserID, e.ISBN, e.Action, e.Day, e.Fine)
	}
}

func (s *session) printHelp() {
	fmt.Println("\n--- Help / Instructions ---")
	fmt.Println("1. Login with your user ID and password. If you are new, choose to register.")
	fmt.Println("2. Students and Faculty can borrow/return books. When borrowing, the current day is recorded and a due date is set (15 days for students, 30 days for faculty).")
	fmt.Println("3. When returning, the system calculates overdue fines (10 rupees per day for students; faculty are exempt).")
	fmt.Println("4. All account details (borrowed books with dates and history) are saved on exit.")
	fmt.Println("5. Librarians have extended privileges to manage books and users.")
	fmt.Println("----------------------------")
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
