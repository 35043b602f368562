package tree

// VisitResult steers tree traversal from a visitor callback.
type VisitResult int

const (
	// VisitContinue proceeds with the traversal as normal.
	VisitContinue VisitResult = iota

	// VisitSkip suppresses the current node's text, children and end
	// call. The node's tail is still delivered, since it belongs to the
	// scope of the parent.
	VisitSkip

	// VisitStop aborts the whole traversal. The walk returns without
	// error; stopping early is control flow, not failure.
	VisitStop
)

func (r VisitResult) String() string {
	switch r {
	case VisitContinue:
		return "continue"
	case VisitSkip:
		return "skip"
	case VisitStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Visitor receives the event stream of a tree traversal. Builders and
// dumpers implement the same interface, so a tree can be replayed into
// any of them.
//
// The attribute list handed to Start and Append is the node's own;
// a visitor that wants to keep or modify it must copy it first.
type Visitor interface {
	// Start opens a formatted region.
	Start(tag Tag, attrs Attrs) (VisitResult, error)

	// Text delivers body or tail content inside the current region.
	Text(text string) error

	// End closes the region opened by the matching Start.
	End(tag Tag) error

	// Append delivers a childless node as a single event instead of a
	// Start/Text/End sequence.
	Append(tag Tag, attrs Attrs, text string) (VisitResult, error)
}

// NopVisitor implements Visitor with do-nothing callbacks. Embed it to
// implement only the events of interest.
type NopVisitor struct{}

func (NopVisitor) Start(Tag, Attrs) (VisitResult, error) { return VisitContinue, nil }

func (NopVisitor) Text(string) error { return nil }

func (NopVisitor) End(Tag) error { return nil }

func (NopVisitor) Append(Tag, Attrs, string) (VisitResult, error) { return VisitContinue, nil }

// Visit replays the tree as an event stream into v. Traversal is
// depth-first in document order. A childless node is delivered through
// Append, all others as Start, text, children with their tails, End.
//
// VisitStop returned from a callback aborts the walk cleanly. Errors
// abort the walk and are returned as is.
func (t *Tree) Visit(v Visitor) error {
	_, err := visitNode(v, t.Root)
	return err
}

func visitNode(v Visitor, n *Node) (VisitResult, error) {
	if len(n.Children) == 0 {
		res, err := v.Append(n.Tag, n.Attrs, n.Text)
		if err != nil {
			return VisitStop, err
		}
		if res == VisitStop {
			return VisitStop, nil
		}
		return VisitContinue, nil
	}

	res, err := v.Start(n.Tag, n.Attrs)
	if err != nil {
		return VisitStop, err
	}
	switch res {
	case VisitSkip:
		return VisitContinue, nil
	case VisitStop:
		return VisitStop, nil
	}

	if n.Text != "" {
		if err := v.Text(n.Text); err != nil {
			return VisitStop, err
		}
	}
	for _, child := range n.Children {
		res, err := visitNode(v, child)
		if err != nil || res == VisitStop {
			return VisitStop, err
		}
		if child.Tail != "" {
			if err := v.Text(child.Tail); err != nil {
				return VisitStop, err
			}
		}
	}
	if err := v.End(n.Tag); err != nil {
		return VisitStop, err
	}
	return VisitContinue, nil
}
