package doctree

// OutlineNode is a TocEntry placed in the nested outline.
type OutlineNode struct {
	TocEntry
	Children []*OutlineNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// BuildOutline rebuilds the nested heading tree from parent pointers.
// Entries whose parent is -1 or was never emitted attach to the root.
func BuildOutline(toc []TocEntry) []*OutlineNode {
	byID := make(map[int]*OutlineNode, len(toc))
	var roots []*OutlineNode

	for _, e := range toc {
		n := &OutlineNode{TocEntry: e}
		if parent, ok := byID[e.ParentID]; ok && e.ParentID != -1 {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
		byID[e.ID] = n
	}
	return roots
}

// Breadcrumb returns the heading titles leading to the content at position,
// outermost first. Content before the first heading has no breadcrumb.
func Breadcrumb(toc []TocEntry, position int) []string {
	byID := make(map[int]TocEntry, len(toc))
	var current *TocEntry
	for i := range toc {
		byID[toc[i].ID] = toc[i]
		if toc[i].Position <= position {
			current = &toc[i]
		}
	}
	if current == nil {
		return nil
	}

	var rev []string
	seen := make(map[int]bool)
	for e, ok := *current, true; ok && !seen[e.ID]; e, ok = byID[e.ParentID] {
		seen[e.ID] = true
		rev = append(rev, e.Title)
	}

	out := make([]string, len(rev))
	for i, t := range rev {
		out[len(rev)-1-i] = t
	}
	return out
}

// Walk visits outline nodes depth-first with their depth (0 for roots).
func Walk(nodes []*OutlineNode, fn func(n *OutlineNode, depth int)) {
	var visit func([]*OutlineNode, int)
	visit = func(ns []*OutlineNode, depth int) {
		for _, n := range ns {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(nodes, 0)
}
