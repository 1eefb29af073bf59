package tree

import (
	"os"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortEntries orders directories before files, then by name using a
// case- and accent-insensitive collation. Equal keys keep their input order.
func sortEntries(entries []os.FileInfo) {
	// collate.Collator is not safe for concurrent use.
	c := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth)
	slices.SortStableFunc(entries, func(a, b os.FileInfo) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return c.CompareString(a.Name(), b.Name())
	})
}
