package selection

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category is the class a relative path is sorted into by a Classifier.
type Category string

const (
	CategoryAll  Category = "all"
	CategoryDocs Category = "docs"
	CategoryCode Category = "code"
)

// Categories lists the values accepted by ParseCategory, in display order.
var Categories = []Category{CategoryAll, CategoryDocs, CategoryCode}

// ParseCategory validates a --filter value.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: invalid filter %q (choose from all, docs, code)", ErrInvalidInput, s)
}

// Classifier maps a root-relative path to its category.
type Classifier func(rel string) Category

// DocsClassifier treats everything under a top-level "docs" directory as
// documentation, and everything at all when the root itself is named "docs".
func DocsClassifier(root string) Classifier {
	rootIsDocs := filepath.Base(root) == "docs"
	return func(rel string) Category {
		if rootIsDocs {
			return CategoryDocs
		}
		first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		if first == "docs" {
			return CategoryDocs
		}
		return CategoryCode
	}
}

// Keep returns a predicate accepting paths of the wanted category. The
// "all" category, or a nil classifier, accepts everything.
func Keep(c Classifier, want Category) func(rel string) bool {
	if c == nil || want == CategoryAll || want == "" {
		return func(string) bool { return true }
	}
	return func(rel string) bool { return c(rel) == want }
}
