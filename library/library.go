package library

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Snapshot file names inside the data directory.
const (
	booksFile = "books.txt"
	usersFile = "users.txt"
)

// Library aggregates the book catalog and the user directory. It is the
// sole entry point for cross-entity lookups and the only component that
// mutates both collections during persistence.
type Library struct {
	catalog *Catalog
	users   map[int]*User
	dataDir string
}

// New returns an empty library whose snapshots live under dataDir.
func New(dataDir string) *Library {
	return &Library{
		catalog: NewCatalog(),
		users:   make(map[int]*User),
		dataDir: dataDir,
	}
}

// Catalog exposes the book catalog.
func (l *Library) Catalog() *Catalog { return l.catalog }

// AddUser inserts u into the directory. A user with the same ID already
// present rejects the candidate and leaves the directory unchanged.
func (l *Library) AddUser(u *User) error {
	if _, exists := l.users[u.ID]; exists {
		return fmt.Errorf("user %d: %w", u.ID, ErrDuplicateID)
	}
	l.users[u.ID] = u
	return nil
}

// FindUserByID looks up a user in the directory.
func (l *Library) FindUserByID(id int) (*User, bool) {
	u, ok := l.users[id]
	return u, ok
}

// RemoveUser deletes the user with the given ID.
func (l *Library) RemoveUser(id int) error {
	if _, ok := l.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	delete(l.users, id)
	return nil
}

// UpdateUser renames the user with the given ID.
func (l *Library) UpdateUser(id int, newName string) error {
	u, ok := l.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	u.Name = newName
	return nil
}

// UpdateBook replaces the title and/or author of the first book matching
// isbn. Empty arguments keep the current value.
func (l *Library) UpdateBook(isbn, newTitle, newAuthor string) error {
	b, ok := l.catalog.FindByISBN(isbn)
	if !ok {
		return fmt.Errorf("update %s: %w", isbn, ErrBookNotFound)
	}
	if newTitle != "" {
		b.Title = newTitle
	}
	if newAuthor != "" {
		b.Author = newAuthor
	}
	return nil
}

// Users returns the directory sorted by ID, for stable listings and saves.
func (l *Library) Users() []*User {
	out := make([]*User, 0, len(l.users))
	for _, u := range l.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UserCount reports the directory size.
func (l *Library) UserCount() int { return len(l.users) }

// Save writes the catalog and the user directory to the data directory.
// The two files are written independently; a failure on either is reported
// but never fatal to the session.
func (l *Library) Save() error {
	if err := os.MkdirAll(l.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return errors.Join(l.saveBooks(), l.saveUsers())
}

func (l *Library) saveBooks() error {
	var sb strings.Builder
	for b := range l.catalog.Books() {
		fmt.Fprintf(&sb, "%s,%s,%s,%d,%s,%d\n", b.Title, b.Author, b.Publisher, b.Year, b.ISBN, int(b.Status))
	}
	if err := os.WriteFile(filepath.Join(l.dataDir, booksFile), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("save books: %w", err)
	}
	return nil
}

func (l *Library) saveUsers() error {
	var sb strings.Builder
	for _, u := range l.Users() {
		fmt.Fprintf(&sb, "%d|%s|%s|%s|%s\n", u.ID, u.Name, u.PasswordHash, u.Role, u.Account.Serialize())
	}
	if err := os.WriteFile(filepath.Join(l.dataDir, usersFile), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// Load reads books first, replacing the in-memory catalog, then users,
// replacing the directory and re-linking each account's loans against the
// freshly loaded catalog. Load replaces, never merges. Missing snapshot
// files are a clean first run, not an error; malformed lines are skipped.
func (l *Library) Load() error {
	if err := l.loadBooks(); err != nil {
		return err
	}
	return l.loadUsers()
}

func (l *Library) loadBooks() error {
	f, err := os.Open(filepath.Join(l.dataDir, booksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load books: %w", err)
	}
	defer f.Close()

	var books []*Book
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) != 6 {
			continue
		}
		year, err := strconv.Atoi(parts[3])
		if err != nil {
			continue
		}
		status, err := strconv.Atoi(parts[5])
		if err != nil {
			continue
		}
		books = append(books, &Book{
			Title:     parts[0],
			Author:    parts[1],
			Publisher: parts[2],
			Year:      year,
			ISBN:      parts[4],
			Status:    BookStatus(status),
		})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	l.catalog.replaceAll(books)
	return nil
}

func (l *Library) loadUsers() error {
	f, err := os.Open(filepath.Join(l.dataDir, usersFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load users: %w", err)
	}
	defer f.Close()

	users := make(map[int]*User)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parts := strings.SplitN(sc.Text(), "|", 5)
		if len(parts) != 5 {
			continue
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		role := Role(parts[3])
		switch role {
		case RoleStudent, RoleFaculty, RoleLibrarian:
		default:
			// Unrecognized type tag: drop the record.
			continue
		}
		u := &User{ID: id, Name: parts[1], PasswordHash: parts[2], Role: role}
		u.Account.Deserialize(parts[4], l.catalog)
		users[id] = u
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	l.users = users
	return nil
}
