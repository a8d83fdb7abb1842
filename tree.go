package refdex

// Tree holds the validated documentation hierarchy for one corpus.
// Elements are stored in an arena addressed by ID, with parent/child
// relations kept as ID maps rather than embedded pointers.
//
// Usage is two-pass: stage every record with Insert (any order), then call
// Resolve once to link parents. Resolve reports all structural problems at
// once and excludes the affected subtrees; the surviving tree is immutable.
type Tree struct {
	corpusID string
	elements map[string]*Element
	order    []string
	children map[string][]string
	roots    []string
	resolved bool
}

// NewTree creates an empty tree for the given corpus.
func NewTree(corpusID string) *Tree {
	return &Tree{
		corpusID: corpusID,
		elements: make(map[string]*Element),
		children: make(map[string][]string),
	}
}

// Insert stages a record for resolution. The declared parent does not need
// to exist yet. Returns EINVALID for malformed records and ECONFLICT for
// duplicate IDs.
func (t *Tree) Insert(record *Record) error {
	if t.resolved {
		return Errorf(EINVALID, "tree already resolved")
	}
	if err := record.Validate(); err != nil {
		return err
	}
	if _, ok := t.elements[record.ID]; ok {
		return Errorf(ECONFLICT, "element %q already staged", record.ID)
	}

	t.elements[record.ID] = &Element{
		ID:        record.ID,
		CorpusID:  t.corpusID,
		Kind:      record.Kind,
		Title:     record.Title,
		Text:      record.Text,
		ParentID:  record.ParentID,
		SourceURL: record.SourceURL,
	}
	t.order = append(t.order, record.ID)
	return nil
}

// Resolve links staged elements to their parents and validates the
// hierarchy. All orphaned references, kind-ordering violations, and cycles
// are reported together rather than failing on the first. Offending
// elements and their descendants are removed from the tree; valid subtrees
// survive. Sibling order follows insertion order.
func (t *Tree) Resolve() []error {
	if t.resolved {
		return []error{Errorf(EINVALID, "tree already resolved")}
	}
	t.resolved = true

	var errs []error
	broken := make(map[string]bool)

	// Pass 1: direct parent checks.
	for _, id := range t.order {
		el := t.elements[id]
		if el.ParentID == "" {
			continue
		}
		parent, ok := t.elements[el.ParentID]
		if !ok {
			errs = append(errs, Errorf(EINVALID,
				"element %q references unknown parent %q", id, el.ParentID))
			broken[id] = true
			continue
		}
		if !el.Kind.ValidParent(parent.Kind) {
			errs = append(errs, Errorf(EINVALID,
				"element %q of kind %q cannot be a child of %q of kind %q",
				id, el.Kind, parent.ID, parent.Kind))
			broken[id] = true
		}
	}

	// Pass 2: cycle detection on the remaining parent links. When a walk
	// revisits a node, that node is on the loop; following parents from it
	// enumerates exactly the loop members (tails leading into the loop are
	// excluded later without their own error).
	reported := make(map[string]bool)
	for _, id := range t.order {
		if broken[id] {
			continue
		}
		onPath := make(map[string]bool)
		cur := id
		for cur != "" && !broken[cur] {
			if onPath[cur] {
				member := cur
				for {
					if !reported[member] {
						reported[member] = true
						broken[member] = true
						errs = append(errs, Errorf(EINVALID,
							"element %q is part of a parent cycle", member))
					}
					member = t.elements[member].ParentID
					if member == cur {
						break
					}
				}
				break
			}
			onPath[cur] = true
			el, ok := t.elements[cur]
			if !ok {
				break
			}
			cur = el.ParentID
		}
	}

	// Pass 3: keep only elements whose ancestor chain reaches a root
	// without crossing a broken element, then build child lists.
	keep := make(map[string]bool)
	var visit func(id string) bool
	visit = func(id string) bool {
		if broken[id] {
			return false
		}
		if v, ok := keep[id]; ok {
			return v
		}
		el := t.elements[id]
		if el.ParentID == "" {
			keep[id] = true
			return true
		}
		// Guard against unreported cycles; broken map handles known ones.
		keep[id] = false
		v := visit(el.ParentID)
		keep[id] = v
		return v
	}

	kept := make(map[string]*Element, len(t.elements))
	for _, id := range t.order {
		if !visit(id) {
			continue
		}
		el := t.elements[id]
		kept[id] = el
		if el.ParentID == "" {
			el.Position = len(t.roots)
			t.roots = append(t.roots, id)
		} else {
			el.Position = len(t.children[el.ParentID])
			t.children[el.ParentID] = append(t.children[el.ParentID], id)
		}
	}
	t.elements = kept

	return errs
}

// Element returns the element with the given ID.
// Returns ENOTFOUND if the element does not exist or was excluded.
func (t *Tree) Element(id string) (*Element, error) {
	el, ok := t.elements[id]
	if !ok {
		return nil, Errorf(ENOTFOUND, "element %q not found", id)
	}
	return el, nil
}

// Len returns the number of elements in the tree.
func (t *Tree) Len() int {
	return len(t.elements)
}

// Roots returns the top-level elements in insertion order.
func (t *Tree) Roots() []*Element {
	roots := make([]*Element, 0, len(t.roots))
	for _, id := range t.roots {
		roots = append(roots, t.elements[id])
	}
	return roots
}

// Children returns the direct children of an element in sibling order.
func (t *Tree) Children(id string) []*Element {
	ids := t.children[id]
	children := make([]*Element, 0, len(ids))
	for _, cid := range ids {
		children = append(children, t.elements[cid])
	}
	return children
}

// Subtree returns the element and all its descendants depth-first, parent
// always before child, siblings in position order.
// Returns ENOTFOUND if the element does not exist. Must be called after
// Resolve.
func (t *Tree) Subtree(id string) ([]*Element, error) {
	if !t.resolved {
		return nil, Errorf(EINVALID, "tree not resolved")
	}
	if _, ok := t.elements[id]; !ok {
		return nil, Errorf(ENOTFOUND, "element %q not found", id)
	}

	var out []*Element
	var walk func(id string)
	walk = func(id string) {
		out = append(out, t.elements[id])
		for _, cid := range t.children[id] {
			walk(cid)
		}
	}
	walk(id)
	return out, nil
}

// Ancestors returns the path from the element's parent to its root, nearest
// parent first. Returns ENOTFOUND if the element does not exist.
func (t *Tree) Ancestors(id string) ([]*Element, error) {
	el, ok := t.elements[id]
	if !ok {
		return nil, Errorf(ENOTFOUND, "element %q not found", id)
	}

	var out []*Element
	for el.ParentID != "" {
		parent, ok := t.elements[el.ParentID]
		if !ok {
			break
		}
		out = append(out, parent)
		el = parent
	}
	return out, nil
}
