package library

import (
	"fmt"
	"iter"
	"strings"
)

// SearchField selects which book attribute Search matches against.
type SearchField int

const (
	SearchByTitle SearchField = iota
	SearchByAuthor
	SearchByISBN
)

// Catalog holds the ordered collection of books. ISBN uniqueness is
// advisory: duplicates are structurally permitted and lookups return the
// first match.
type Catalog struct {
	books []*Book
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog { return &Catalog{} }

// Add appends a book. No uniqueness check is performed on the ISBN.
func (c *Catalog) Add(b *Book) {
	c.books = append(c.books, b)
}

// Remove deletes every entry matching isbn. A borrowed copy blocks the whole
// removal so an active loan can never point at a vanished record. Not-found
// reports ErrBookNotFound and leaves the catalog untouched.
func (c *Catalog) Remove(isbn string) error {
	found := false
	for _, b := range c.books {
		if b.ISBN == isbn {
			found = true
			if b.Status == StatusBorrowed {
				return fmt.Errorf("remove %s: %w", isbn, ErrBookBorrowed)
			}
		}
	}
	if !found {
		return fmt.Errorf("remove %s: %w", isbn, ErrBookNotFound)
	}

	kept := c.books[:0]
	for _, b := range c.books {
		if b.ISBN != isbn {
			kept = append(kept, b)
		}
	}
	c.books = kept
	return nil
}

// FindByISBN returns the first book with the given ISBN.
func (c *Catalog) FindByISBN(isbn string) (*Book, bool) {
	for _, b := range c.books {
		if b.ISBN == isbn {
			return b, true
		}
	}
	return nil, false
}

// Len reports how many books the catalog holds.
func (c *Catalog) Len() int { return len(c.books) }

// Books yields every book in insertion order. The sequence is restartable.
func (c *Catalog) Books() iter.Seq[*Book] {
	return func(yield func(*Book) bool) {
		for _, b := range c.books {
			if !yield(b) {
				return
			}
		}
	}
}

// Search yields books whose selected field contains query. Matching is
// case-sensitive substring, same as the catalog has always behaved.
func (c *Catalog) Search(field SearchField, query string) iter.Seq[*Book] {
	return func(yield func(*Book) bool) {
		for _, b := range c.books {
			var hay string
			switch field {
			case SearchByTitle:
				hay = b.Title
			case SearchByAuthor:
				hay = b.Author
			case SearchByISBN:
				hay = b.ISBN
			}
			if strings.Contains(hay, query) {
				if !yield(b) {
					return
				}
			}
		}
	}
}

// replaceAll swaps in a freshly loaded book list. Load replaces, never
// merges.
func (c *Catalog) replaceAll(books []*Book) {
	c.books = books
}
