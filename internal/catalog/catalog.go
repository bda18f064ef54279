// Package catalog lists the bundled statutes: top-level category folders,
// their sub-category folders and the law files inside them.
package catalog

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/dgallion1/lawref/internal/parser"
)

// ErrNotFound is returned when a category does not exist.
var ErrNotFound = errors.New("category not found")

// Category is a folder of laws. Sub-categories carry their parent's ID in
// Group.
type Category struct {
	ID          string `json:"id" yaml:"id" db:"id"` // folder path relative to the laws root
	Name        string `json:"name" yaml:"name" db:"name"`
	Folder      string `json:"folder" yaml:"folder" db:"folder"`
	IsSubFolder bool   `json:"isSubFolder" yaml:"isSubFolder" db:"is_sub_folder"`
	Group       string `json:"group,omitempty" yaml:"group,omitempty" db:"group_id"`
	Order       int    `json:"order" yaml:"order" db:"sort_order"`
}

// Law is one statute file.
type Law struct {
	ID         string `json:"id" yaml:"id" db:"id"`
	Name       string `json:"name" yaml:"name" db:"name"`
	Filename   string `json:"filename" yaml:"filename" db:"filename"`
	Path       string `json:"path" yaml:"path" db:"path"` // relative to the laws root
	CategoryID string `json:"categoryId" yaml:"categoryId" db:"category_id"`
	Level      string `json:"level,omitempty" yaml:"level,omitempty" db:"level"`
	Publish    string `json:"publish,omitempty" yaml:"publish,omitempty" db:"publish"`
	Expired    string `json:"expired,omitempty" yaml:"expired,omitempty" db:"expired"`
	Subtitle   string `json:"subtitle,omitempty" yaml:"subtitle,omitempty" db:"subtitle"`
	ValidFrom  string `json:"validFrom,omitempty" yaml:"validFrom,omitempty" db:"valid_from"`
	Order      int    `json:"order" yaml:"order" db:"sort_order"`
}

// Store answers the catalog queries.
type Store interface {
	// Categories returns the top-level categories in display order.
	Categories(ctx context.Context) ([]Category, error)
	// SubCategories returns the second-level folders of parentID. Folders
	// nested deeper than two levels are left out.
	SubCategories(ctx context.Context, parentID string) ([]Category, error)
	// Laws returns the law files directly inside categoryID.
	Laws(ctx context.Context, categoryID string) ([]Law, error)
	// AllLaws returns the laws of parentID and of all its sub-categories.
	AllLaws(ctx context.Context, parentID string) ([]Law, error)
}

// IsLawFile reports whether name has an extension the parser understands.
func IsLawFile(name string) bool {
	return strings.Contains(name, ".") && parser.IsSupportedExtension(name)
}

func newLaw(folder, categoryID, filename string, order int) Law {
	return Law{
		ID:         path.Join(folder, filename),
		Name:       parser.TitleFromFilename(filename),
		Filename:   filename,
		Path:       path.Join(folder, filename),
		CategoryID: categoryID,
		Order:      order,
	}
}
