// Package xml provides fragment parsing, node construction, and rendering
// on top of xmlquery.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities by default, and we explicitly
//     disable entity expansion in validation functions.
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/poslavu/core/encoding"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// fragmentElement wraps fragment text so that xmlquery, which expects a
// document, sees a single root. It never appears in rendered output.
const fragmentElement = "poslavu-fragment"

// ErrNotFragment is returned when the wrapped text escapes its container.
var ErrNotFragment = errors.New("content is not an XML fragment")

// Node represents an XML node (fragment, element, text, etc.).
type Node struct {
	node     *xmlquery.Node
	fragment bool
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Message string
}

// FormatOptions controls XML formatting behavior.
type FormatOptions struct {
	Indent string // Indentation string (e.g., "  " or "\t")
}

// ParseFragment parses a sequence of zero or more nodes that need not share
// a single root. The returned node is the fragment container; its children
// are the top-level nodes of data.
func ParseFragment(data []byte) (*Node, error) {
	var buf bytes.Buffer
	buf.Grow(len(data) + 2*len(fragmentElement) + 5)
	buf.WriteString("<" + fragmentElement + ">")
	buf.Write(data)
	buf.WriteString("</" + fragmentElement + ">")

	doc, err := xmlquery.Parse(&buf)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}

	var container *xmlquery.Node
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		if container != nil || child.Data != fragmentElement {
			return nil, ErrNotFragment
		}
		container = child
	}
	if container == nil {
		return nil, ErrNotFragment
	}
	return &Node{node: container, fragment: true}, nil
}

// Validate checks that data is a well-formed fragment.
//
// Security: entity expansion is disabled. Go's xml.Decoder does not fetch
// external entities by default, and we explicitly disable internal entity
// expansion as well.
func Validate(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(io.MultiReader(
		strings.NewReader("<"+fragmentElement+">"),
		bytes.NewReader(data),
		strings.NewReader("</"+fragmentElement+">"),
	))

	// XXE Protection (CWE-611)
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 1
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				line = syntaxErr.Line
			}
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Message: err.Error(),
			})
			break
		}
	}

	return result
}

// ValidName reports whether name can be used verbatim as an element tag
// without a namespace prefix.
func ValidName(name string) bool {
	if name == "" || strings.ContainsAny(name, ":<>/ \t\r\n=\"'&") {
		return false
	}
	decoder := xml.NewDecoder(strings.NewReader("<" + name + "/>"))
	tok, err := decoder.Token()
	if err != nil {
		return false
	}
	start, ok := tok.(xml.StartElement)
	return ok && start.Name.Space == "" && start.Name.Local == name && len(start.Attr) == 0
}

// NewFragment returns an empty fragment container.
func NewFragment() *Node {
	return &Node{
		node:     &xmlquery.Node{Type: xmlquery.ElementNode, Data: fragmentElement},
		fragment: true,
	}
}

// NewElement returns a detached element named name.
func NewElement(name string) *Node {
	return &Node{node: &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}}
}

// NewText returns a detached text node.
func NewText(text string) *Node {
	return &Node{node: &xmlquery.Node{Type: xmlquery.TextNode, Data: text}}
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	if n == nil || n.node == nil || child == nil || child.node == nil {
		return
	}
	xmlquery.AddChild(n.node, child.node)
}

// IsFragment reports whether n is a fragment container or document root.
func (n *Node) IsFragment() bool {
	if n == nil || n.node == nil {
		return false
	}
	return n.fragment || n.node.Type == xmlquery.DocumentNode
}

// IsElement reports whether n is an element (fragment containers are not).
func (n *Node) IsElement() bool {
	if n == nil || n.node == nil {
		return false
	}
	return !n.fragment && n.node.Type == xmlquery.ElementNode
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil || n.fragment {
		return ""
	}
	return n.node.Data
}

// Text returns the concatenated text content of the node and its descendants.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n == nil || n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Select evaluates a compiled XPath expression with n as the context node.
func (n *Node) Select(expr *xpath.Expr) []*Node {
	if n == nil || n.node == nil || expr == nil {
		return nil
	}
	nodes := xmlquery.QuerySelectorAll(n.node, expr)
	result := make([]*Node, len(nodes))
	for i, found := range nodes {
		result[i] = &Node{node: found}
	}
	return result
}

// WriteTo renders n compactly: no declaration, no added whitespace, and
// self-closing tags for elements without children. A fragment renders as
// its children in order.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	if n == nil || n.node == nil {
		return 0, nil
	}
	var buf bytes.Buffer
	if n.IsFragment() {
		for child := n.node.FirstChild; child != nil; child = child.NextSibling {
			renderNode(&buf, child)
		}
	} else {
		renderNode(&buf, n.node)
	}
	return buf.WriteTo(w)
}

// OutputXML returns the compact rendering of n.
func (n *Node) OutputXML() string {
	var b strings.Builder
	_, _ = n.WriteTo(&b)
	return b.String()
}

func renderNode(w *bytes.Buffer, n *xmlquery.Node) {
	switch n.Type {
	case xmlquery.ElementNode:
		w.WriteString("<")
		writeName(w, n)
		for _, attr := range n.Attr {
			w.WriteString(" ")
			if attr.Name.Space != "" {
				w.WriteString(attr.Name.Space)
				w.WriteString(":")
			}
			w.WriteString(attr.Name.Local)
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}
		if n.FirstChild == nil {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			renderNode(w, child)
		}
		w.WriteString("</")
		writeName(w, n)
		w.WriteString(">")

	case xmlquery.TextNode:
		w.WriteString(encoding.EscapeXMLText(n.Data))

	case xmlquery.CharDataNode:
		w.WriteString("<![CDATA[")
		w.WriteString(n.Data)
		w.WriteString("]]>")

	case xmlquery.CommentNode:
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->")
	}
}

func writeName(w *bytes.Buffer, n *xmlquery.Node) {
	if n.Prefix != "" {
		w.WriteString(n.Prefix)
		w.WriteString(":")
	}
	w.WriteString(n.Data)
}

// Format pretty-prints fragment data.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	frag, err := ParseFragment(data)
	if err != nil {
		return nil, err
	}
	return frag.Format(opts), nil
}

// Format pretty-prints n with one element per line.
func (n *Node) Format(opts FormatOptions) []byte {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	var buf bytes.Buffer
	if n == nil || n.node == nil {
		return nil
	}
	if n.IsFragment() {
		for child := n.node.FirstChild; child != nil; child = child.NextSibling {
			formatNode(&buf, child, 0, opts.Indent)
		}
	} else {
		formatNode(&buf, n.node, 0, opts.Indent)
	}
	return buf.Bytes()
}

// formatNode recursively formats an XML node.
func formatNode(w *bytes.Buffer, n *xmlquery.Node, depth int, indent string) {
	switch n.Type {
	case xmlquery.ElementNode:
		writeIndent(w, depth, indent)
		w.WriteString("<")
		writeName(w, n)

		for _, attr := range n.Attr {
			w.WriteString(" ")
			if attr.Name.Space != "" {
				w.WriteString(attr.Name.Space)
				w.WriteString(":")
			}
			w.WriteString(attr.Name.Local)
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}

		hasElementChildren := false
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xmlquery.ElementNode {
				hasElementChildren = true
				break
			}
		}

		if n.FirstChild == nil {
			w.WriteString("/>\n")
			return
		}

		w.WriteString(">")
		if hasElementChildren {
			w.WriteString("\n")
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case xmlquery.ElementNode:
				formatNode(w, child, depth+1, indent)
			case xmlquery.TextNode:
				// Whitespace between elements is layout, not content.
				if hasElementChildren && strings.TrimSpace(child.Data) == "" {
					continue
				}
				if hasElementChildren {
					writeIndent(w, depth+1, indent)
				}
				w.WriteString(encoding.EscapeXMLText(child.Data))
				if hasElementChildren {
					w.WriteString("\n")
				}
			case xmlquery.CharDataNode:
				w.WriteString("<![CDATA[")
				w.WriteString(child.Data)
				w.WriteString("]]>")
			case xmlquery.CommentNode:
				formatNode(w, child, depth+1, indent)
			}
		}

		if hasElementChildren {
			writeIndent(w, depth, indent)
		}
		w.WriteString("</")
		writeName(w, n)
		w.WriteString(">\n")

	case xmlquery.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			writeIndent(w, depth, indent)
			w.WriteString(encoding.EscapeXMLText(text))
			w.WriteString("\n")
		}

	case xmlquery.CommentNode:
		writeIndent(w, depth, indent)
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->\n")
	}
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}
