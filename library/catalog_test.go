package library

import (
	"errors"
	"testing"
)

func sampleBook(isbn, title, author string) *Book {
	return &Book{Title: title, Author: author, Publisher: "Pub", Year: 2000, ISBN: isbn}
}

func TestCatalogAddAndFind(t *testing.T) {
	c := NewCatalog()
	c.Add(sampleBook("111", "First", "A"))
	c.Add(sampleBook("222", "Second", "B"))

	b, ok := c.FindByISBN("222")
	if !ok || b.Title != "Second" {
		t.Fatalf("find 222: got %v, %v", b, ok)
	}
	if _, ok := c.FindByISBN("999"); ok {
		t.Fatalf("expected 999 to be absent")
	}
}

func TestCatalogDuplicateISBNFirstMatch(t *testing.T) {
	c := NewCatalog()
	c.Add(sampleBook("111", "Original", "A"))
	c.Add(sampleBook("111", "Duplicate", "B"))

	b, ok := c.FindByISBN("111")
	if !ok || b.Title != "Original" {
		t.Fatalf("lookup should return the first match, got %v", b)
	}
}

func TestCatalogRemove(t *testing.T) {
	c := NewCatalog()
	c.Add(sampleBook("111", "Keep", "A"))
	c.Add(sampleBook("222", "Drop", "B"))
	c.Add(sampleBook("222", "Drop Too", "B"))

	if err := c.Remove("222"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("want 1 book left, got %d", c.Len())
	}

	err := c.Remove("999")
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("want ErrBookNotFound, got %v", err)
	}
}

func TestCatalogRemoveBorrowedRejected(t *testing.T) {
	c := NewCatalog()
	b := sampleBook("111", "Lent Out", "A")
	b.Status = StatusBorrowed
	c.Add(b)

	err := c.Remove("111")
	if !errors.Is(err, ErrBookBorrowed) {
		t.Fatalf("want ErrBookBorrowed, got %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("borrowed book must not be removed")
	}
}

func TestCatalogBooksOrderAndRestart(t *testing.T) {
	c := NewCatalog()
	isbns := []string{"1", "2", "3"}
	for _, isbn := range isbns {
		c.Add(sampleBook(isbn, "T"+isbn, "A"))
	}

	// Two full passes over the same sequence must see the same order.
	for pass := 0; pass < 2; pass++ {
		i := 0
		for b := range c.Books() {
			if b.ISBN != isbns[i] {
				t.Fatalf("pass %d position %d: got %s", pass, i, b.ISBN)
			}
			i++
		}
		if i != len(isbns) {
			t.Fatalf("pass %d: want %d books, got %d", pass, len(isbns), i)
		}
	}
}

func TestCatalogSearch(t *testing.T) {
	c := NewCatalog()
	c.Add(sampleBook("9780134190440", "The Go Programming Language", "Alan Donovan"))
	c.Add(sampleBook("9780132350884", "Clean Code", "Robert Martin"))
	c.Add(sampleBook("9780201616224", "The Pragmatic Programmer", "Andrew Hunt"))

	var titles []string
	for b := range c.Search(SearchByTitle, "Pro") {
		titles = append(titles, b.Title)
	}
	if len(titles) != 2 {
		t.Fatalf("want 2 title matches, got %v", titles)
	}

	count := 0
	for range c.Search(SearchByAuthor, "Martin") {
		count++
	}
	if count != 1 {
		t.Fatalf("want 1 author match, got %d", count)
	}

	// Matching is case-sensitive.
	for range c.Search(SearchByTitle, "clean") {
		t.Fatalf("lowercase query must not match")
	}

	count = 0
	for range c.Search(SearchByISBN, "978013") {
		count++
	}
	if count != 2 {
		t.Fatalf("want 2 ISBN matches, got %d", count)
	}
}
