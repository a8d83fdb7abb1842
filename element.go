package refdex

import "context"

// Kind classifies a documentation element within the reference hierarchy.
type Kind string

// Element kinds, roughly ordered from coarse to fine.
const (
	KindModule     Kind = "module"
	KindClass      Kind = "class"
	KindStruct     Kind = "struct"
	KindFunction   Kind = "function"
	KindMember     Kind = "member"
	KindAttribute  Kind = "attribute"
	KindDefinition Kind = "definition"
)

// Valid returns true if k is a known element kind.
func (k Kind) Valid() bool {
	switch k {
	case KindModule, KindClass, KindStruct, KindFunction, KindMember,
		KindAttribute, KindDefinition:
		return true
	}
	return false
}

// Leaf returns true for kinds that terminate the hierarchy and are
// indexed as fine-grained chunks.
func (k Kind) Leaf() bool {
	switch k {
	case KindFunction, KindMember, KindAttribute, KindDefinition:
		return true
	}
	return false
}

// ValidParent reports whether an element of kind k may be the child of an
// element of kind parent. Modules nest under modules; classes and structs
// live under modules or other classes; callables and attributes live under
// modules, classes, or structs; definitions attach to callables or classes,
// never to other definitions.
func (k Kind) ValidParent(parent Kind) bool {
	switch k {
	case KindModule:
		return parent == KindModule
	case KindClass, KindStruct:
		return parent == KindModule || parent == KindClass || parent == KindStruct
	case KindFunction, KindMember, KindAttribute:
		return parent == KindModule || parent == KindClass || parent == KindStruct
	case KindDefinition:
		return parent == KindClass || parent == KindStruct ||
			parent == KindFunction || parent == KindMember
	}
	return false
}

// Record is a flat documentation element as supplied by a loader, before
// hierarchy validation. Records may arrive in any order; ParentID refers to
// another record's ID and is empty for roots.
type Record struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	ParentID  string `json:"parentId"`
	SourceURL string `json:"sourceUrl"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "record ID required")
	}
	if !r.Kind.Valid() {
		return Errorf(EINVALID, "record %q has unknown kind %q", r.ID, r.Kind)
	}
	if r.Title == "" {
		return Errorf(EINVALID, "record %q title required", r.ID)
	}
	if r.ParentID == r.ID {
		return Errorf(EINVALID, "record %q is its own parent", r.ID)
	}
	return nil
}

// Element is a validated node of a corpus documentation tree.
type Element struct {
	ID        string `json:"id"`
	CorpusID  string `json:"corpusId"`
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Language  string `json:"language"`
	ParentID  string `json:"parentId"`
	SourceURL string `json:"sourceUrl"`
	Position  int    `json:"position"`
}

// Validate returns an error if the element contains invalid fields.
func (e *Element) Validate() error {
	if e.ID == "" {
		return Errorf(EINVALID, "element ID required")
	}
	if e.CorpusID == "" {
		return Errorf(EINVALID, "element corpus ID required")
	}
	if !e.Kind.Valid() {
		return Errorf(EINVALID, "element %q has unknown kind %q", e.ID, e.Kind)
	}
	if e.Title == "" {
		return Errorf(EINVALID, "element %q title required", e.ID)
	}
	return nil
}

// RecordSource supplies flat documentation records for indexing.
// Implementations read scraper dumps (CSV, Doxygen XML) from disk.
type RecordSource interface {
	// Load reads all records from the source. Order is not significant;
	// the tree resolver links parents in a second pass.
	Load(ctx context.Context) ([]*Record, error)
}

// ElementService represents a service for managing persisted elements.
type ElementService interface {
	// CreateElements stores a batch of elements.
	CreateElements(ctx context.Context, elements []*Element) error

	// FindElementByID retrieves an element by corpus and ID.
	// Returns ENOTFOUND if the element does not exist.
	FindElementByID(ctx context.Context, corpusID, id string) (*Element, error)

	// FindElements retrieves elements matching the filter.
	FindElements(ctx context.Context, filter ElementFilter) ([]*Element, error)

	// Ancestors returns the chain from the element's parent up to its root,
	// nearest parent first. Returns ENOTFOUND if the element does not exist.
	Ancestors(ctx context.Context, corpusID, id string) ([]*Element, error)

	// DeleteElementsByCorpus removes all elements for a corpus.
	DeleteElementsByCorpus(ctx context.Context, corpusID string) error
}

// ElementFilter represents a filter for FindElements.
type ElementFilter struct {
	CorpusID *string `json:"corpusId"`
	Kind     *Kind   `json:"kind"`
	ParentID *string `json:"parentId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
