package result

import (
	"io"

	"github.com/FocuswithJustin/poslavu/core/errors"
	"github.com/FocuswithJustin/poslavu/core/xml"
)

// Element builds a detached <result> element holding one child per field.
// Keys that are not legal unprefixed XML names are rejected.
func (r *Record) Element() (*xml.Node, error) {
	elem := xml.NewElement(ElementName)
	for key, value := range r.All() {
		if !xml.ValidName(key) {
			return nil, &errors.ValidationError{
				Field:   key,
				Value:   value,
				Message: "not a valid XML element name",
			}
		}
		field := xml.NewElement(key)
		if value != "" {
			field.AppendChild(xml.NewText(value))
		}
		elem.AppendChild(field)
	}
	return elem, nil
}

// AppendTo builds the <result> element and attaches it as the last child
// of parent, so a record can be embedded in a larger payload.
func (r *Record) AppendTo(parent *xml.Node) (*xml.Node, error) {
	if parent == nil {
		return nil, errors.NewArgument("append", "nil parent", nil)
	}
	elem, err := r.Element()
	if err != nil {
		return nil, err
	}
	parent.AppendChild(elem)
	return elem, nil
}

// Serialize renders r as a <result> fragment with no XML declaration.
// An empty record renders as <result/>.
func (r *Record) Serialize() (string, error) {
	elem, err := r.Element()
	if err != nil {
		return "", err
	}
	return elem.OutputXML(), nil
}

// WriteTo writes the serialized fragment to w.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	elem, err := r.Element()
	if err != nil {
		return 0, err
	}
	n, err := elem.WriteTo(w)
	if err != nil {
		return n, errors.NewIO("write", "", err)
	}
	return n, nil
}

// SerializeAll renders records as sibling <result> elements. When wrapper
// is non-empty the siblings are enclosed in an element of that name.
func SerializeAll(records []*Record, wrapper string) (string, error) {
	parent := xml.NewFragment()
	if wrapper != "" {
		if !xml.ValidName(wrapper) {
			return "", errors.NewValidation(wrapper, "not a valid XML element name")
		}
		elem := xml.NewElement(wrapper)
		parent.AppendChild(elem)
		parent = elem
	}
	for _, r := range records {
		if _, err := r.AppendTo(parent); err != nil {
			return "", err
		}
	}
	return parent.OutputXML(), nil
}
