package result

import (
	"io"

	"github.com/FocuswithJustin/poslavu/core/errors"
	"github.com/FocuswithJustin/poslavu/core/xml"
	"github.com/antchfx/xpath"
)

// ElementName is the tag of the element that carries a record.
const ElementName = "result"

// ListElementName is the tag of the element that encloses a batch of
// records.
const ListElementName = "results"

// resultQuery matches result elements among the immediate children of the
// context node only; nested results are never matched.
var resultQuery = xpath.MustCompile("./" + ElementName)

// Parse reads the single <result> element of fragment into a record.
//
// The fragment may hold other top-level nodes, but exactly one of them
// must be a result element. Malformed XML yields an *errors.ArgumentError;
// zero or several result elements yield an *errors.ShapeError.
func Parse(fragment string) (*Record, error) {
	return ParseBytes([]byte(fragment))
}

// ParseBytes is like Parse but takes raw bytes.
func ParseBytes(data []byte) (*Record, error) {
	frag, err := xml.ParseFragment(data)
	if err != nil {
		return nil, errors.NewArgument("parse", "malformed XML fragment", err)
	}
	return FromNode(frag)
}

// Read parses a fragment from r.
func Read(r io.Reader) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	return ParseBytes(data)
}

// FromNode builds a record from an already parsed node. If n is itself a
// result element it is used directly; otherwise n must be a fragment or
// element with exactly one result child.
func FromNode(n *xml.Node) (*Record, error) {
	elem, err := selectResult(n)
	if err != nil {
		return nil, err
	}
	return fromElement(elem), nil
}

// ParseAll reads every result element of a batch payload. Results may
// appear as top-level siblings or as the children of a single top-level
// wrapper. A payload with no result element at all is a ShapeError, except
// for an empty <results/> list, which yields no records.
func ParseAll(fragment string) ([]*Record, error) {
	frag, err := xml.ParseFragment([]byte(fragment))
	if err != nil {
		return nil, errors.NewArgument("parse", "malformed XML fragment", err)
	}

	elems := frag.Select(resultQuery)
	if len(elems) == 0 {
		top := frag.Children()
		if len(top) != 1 {
			return nil, errors.NewShape(ElementName, 0)
		}
		wrapper := top[0]
		elems = wrapper.Select(resultQuery)
		if len(elems) == 0 && (wrapper.Name() != ListElementName || len(wrapper.Children()) > 0) {
			return nil, errors.NewShape(ElementName, 0)
		}
	}

	records := make([]*Record, 0, len(elems))
	for _, elem := range elems {
		records = append(records, fromElement(elem))
	}
	return records, nil
}

func selectResult(n *xml.Node) (*xml.Node, error) {
	if n == nil {
		return nil, errors.NewArgument("from node", "nil node", nil)
	}
	if n.IsElement() && n.Name() == ElementName {
		return n, nil
	}
	if !n.IsElement() && !n.IsFragment() {
		return nil, errors.NewArgument("from node", "node is neither an element nor a fragment", nil)
	}

	results := n.Select(resultQuery)
	switch len(results) {
	case 0:
		return nil, errors.NewShape(ElementName, 0)
	case 1:
		return results[0], nil
	default:
		return nil, errors.NewShape(ElementName, len(results))
	}
}

func fromElement(elem *xml.Node) *Record {
	r := &Record{}
	for _, child := range elem.Children() {
		r.SetString(child.Name(), child.Text())
	}
	return r
}
