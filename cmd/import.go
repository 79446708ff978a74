package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"library-system/library"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-import books from a CSV file",
	Long: `Bulk-import books into the catalog from a CSV file. Each line is

	title,author,publisher,year,isbn

(the same field order as the books snapshot; a trailing status column is
accepted and ignored — imported books start out Available). The catalog is
loaded first, so imports add to the existing snapshot.`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) {
	cfg := resolveConfig()

	lib := library.New(cfg.DataDir)
	if err := lib.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load saved data: %v\n", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening import file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	successCount := 0
	errorCount := 0

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 5 && len(parts) != 6 {
			fmt.Printf("SKIP - malformed line: %s\n", truncateString(line, 60))
			errorCount++
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			fmt.Printf("SKIP - bad year in line: %s\n", truncateString(line, 60))
			errorCount++
			continue
		}
		book := &library.Book{
			Title:     strings.TrimSpace(parts[0]),
			Author:    strings.TrimSpace(parts[1]),
			Publisher: strings.TrimSpace(parts[2]),
			Year:      year,
			ISBN:      strings.TrimSpace(parts[4]),
			Status:    library.StatusAvailable,
		}
		lib.Catalog().Add(book)
		fmt.Printf("Imported: %s by %s (ISBN %s)\n", book.Title, book.Author, book.ISBN)
		successCount++
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading import file: %v\n", err)
		os.Exit(1)
	}

	if err := lib.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)
}
