package xml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/antchfx/xpath"
)

// TestParseFragmentMultipleRoots verifies that top-level siblings are kept.
func TestParseFragmentMultipleRoots(t *testing.T) {
	frag, err := ParseFragment([]byte(`<a>1</a>text<b/><c>3</c>`))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if !frag.IsFragment() {
		t.Error("ParseFragment should return a fragment container")
	}
	if frag.IsElement() {
		t.Error("fragment container should not report as element")
	}

	children := frag.Children()
	if len(children) != 3 {
		t.Fatalf("Children() returned %d nodes, want 3", len(children))
	}
	names := []string{children[0].Name(), children[1].Name(), children[2].Name()}
	if strings.Join(names, ",") != "a,b,c" {
		t.Errorf("child names = %v, want [a b c]", names)
	}
}

// TestParseFragmentTextOnly verifies that a fragment without elements parses.
func TestParseFragmentTextOnly(t *testing.T) {
	for _, input := range []string{"", "   ", "just text"} {
		frag, err := ParseFragment([]byte(input))
		if err != nil {
			t.Fatalf("ParseFragment(%q) failed: %v", input, err)
		}
		if len(frag.Children()) != 0 {
			t.Errorf("ParseFragment(%q) has element children", input)
		}
	}
}

// TestParseFragmentInvalid verifies error handling for malformed XML.
func TestParseFragmentInvalid(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unterminated tag", "<result><x>1</x"},
		{"unclosed element", "<result><x>1</x>"},
		{"mismatched tags", "<root></other>"},
		{"invalid chars", "<root>\x00</root>"},
		{"stray end tag", "</result>"},
		{"unknown entity", "<root>&nbsp;</root>"},
		{"escaping the container", "</" + fragmentElement + "><" + fragmentElement + ">"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFragment([]byte(tt.xml)); err == nil {
				t.Error("ParseFragment should fail for invalid XML")
			}
		})
	}
}

// TestNodeText verifies concatenated text extraction.
func TestNodeText(t *testing.T) {
	frag, err := ParseFragment([]byte(`<p>Hello <b>bold</b> &amp; <![CDATA[raw <x>]]></p>`))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	p := frag.Children()[0]
	if got, want := p.Text(), "Hello bold & raw <x>"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

// TestSelectDirectChildrenOnly verifies that ./name does not descend.
func TestSelectDirectChildrenOnly(t *testing.T) {
	frag, err := ParseFragment([]byte(`<result/><wrap><result/></wrap><result/>`))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	expr := xpath.MustCompile("./result")
	if got := len(frag.Select(expr)); got != 2 {
		t.Errorf("Select(./result) = %d nodes, want 2", got)
	}

	if got := len(frag.Select(xpath.MustCompile("./wrap/result"))); got != 1 {
		t.Errorf("Select(./wrap/result) = %d nodes, want 1", got)
	}
	if got := frag.Select(nil); got != nil {
		t.Errorf("Select(nil) = %v, want nil", got)
	}
}

// TestBuildAndRender verifies compact rendering of constructed nodes.
func TestBuildAndRender(t *testing.T) {
	result := NewElement("result")
	id := NewElement("id")
	id.AppendChild(NewText("42"))
	result.AppendChild(id)
	note := NewElement("note")
	note.AppendChild(NewText("a < b & c > d"))
	result.AppendChild(note)
	result.AppendChild(NewElement("empty"))

	want := `<result><id>42</id><note>a &lt; b &amp; c &gt; d</note><empty/></result>`
	if got := result.OutputXML(); got != want {
		t.Errorf("OutputXML() = %q, want %q", got, want)
	}
}

// TestRenderFragment verifies that the container itself is never rendered.
func TestRenderFragment(t *testing.T) {
	frag := NewFragment()
	frag.AppendChild(NewElement("a"))
	frag.AppendChild(NewElement("b"))

	var buf bytes.Buffer
	n, err := frag.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if got, want := buf.String(), "<a/><b/>"; got != want {
		t.Errorf("WriteTo() = %q, want %q", got, want)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() returned %d, wrote %d bytes", n, buf.Len())
	}
}

// TestRenderRoundTripsWhitespace verifies that text survives parse and render.
func TestRenderRoundTripsWhitespace(t *testing.T) {
	input := "<v>  two  spaces\ttab\nline&#xD;</v>"
	frag, err := ParseFragment([]byte(input))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	v := frag.Children()[0]
	if got, want := v.Text(), "  two  spaces\ttab\nline\r"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got := frag.OutputXML(); got != input {
		t.Errorf("OutputXML() = %q, want %q", got, input)
	}
}

// TestNilNode verifies nil receivers are safe.
func TestNilNode(t *testing.T) {
	var n *Node
	if n.Name() != "" || n.Text() != "" {
		t.Error("nil node should return empty strings")
	}
	if n.Children() != nil {
		t.Error("nil node should have no children")
	}
	if n.IsElement() || n.IsFragment() {
		t.Error("nil node should be neither element nor fragment")
	}
	if n.OutputXML() != "" {
		t.Error("nil node should render empty")
	}
}

// TestValidName verifies element name legality checks.
func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"id", true},
		{"order_id", true},
		{"item-2", true},
		{"a.b", true},
		{"_x", true},
		{"名前", true},
		{"", false},
		{"1abc", false},
		{"has space", false},
		{"ns:tag", false},
		{"a>b", false},
		{"a/b", false},
		{"-lead", false},
		{`a"b`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidName(tt.name); got != tt.want {
				t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

// TestValidate verifies well-formedness validation of fragments.
func TestValidate(t *testing.T) {
	if result := Validate([]byte(`<a/><b>x</b>`)); !result.Valid {
		t.Errorf("valid fragment should pass: %v", result.Errors)
	}

	result := Validate([]byte("<result>\n<x>1</x"))
	if result.Valid {
		t.Fatal("malformed fragment should fail")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if result.Errors[0].Line < 1 {
		t.Errorf("error line = %d, want >= 1", result.Errors[0].Line)
	}
	if result.Errors[0].Message == "" {
		t.Error("error message should not be empty")
	}
}

// TestFormat verifies pretty-printing.
func TestFormat(t *testing.T) {
	out, err := Format([]byte(`<result><id>42</id><name>A &amp; B</name><empty/></result>`), FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "<result>\n  <id>42</id>\n  <name>A &amp; B</name>\n  <empty/>\n</result>\n"
	if string(out) != want {
		t.Errorf("Format() =\n%s\nwant\n%s", out, want)
	}
}

// TestFormatWithTabs verifies a custom indent string.
func TestFormatWithTabs(t *testing.T) {
	out, err := Format([]byte(`<result><id>1</id></result>`), FormatOptions{Indent: "\t"})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(string(out), "\t<id>1</id>") {
		t.Errorf("Format() should use tab indent, got %q", out)
	}
}

// TestFormatDropsLayoutWhitespace verifies that existing indentation is not doubled.
func TestFormatDropsLayoutWhitespace(t *testing.T) {
	in := "<result>\n    <id>1</id>\n</result>"
	out, err := Format([]byte(in), FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if got, want := string(out), "<result>\n  <id>1</id>\n</result>\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

// TestFormatInvalidXML verifies Format reports parse failures.
func TestFormatInvalidXML(t *testing.T) {
	if _, err := Format([]byte("<a><b></a>"), FormatOptions{}); err == nil {
		t.Error("Format should fail for invalid XML")
	}
}
