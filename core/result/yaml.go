package result

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/poslavu/core/errors"
)

// MarshalYAML returns r as an ordered mapping of string scalars.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range r.All() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	}
	return node, nil
}

// UnmarshalYAML replaces r's fields with those of a flat mapping, keeping
// document order. Scalars keep their literal text and null becomes "".
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = value.Content[0]
	}
	if value.Kind != yaml.MappingNode {
		return errors.NewArgument("unmarshal yaml", fmt.Sprintf("expected a mapping at line %d", value.Line), nil)
	}

	fresh := &Record{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return errors.NewArgument("unmarshal yaml", fmt.Sprintf("non-scalar key at line %d", keyNode.Line), nil)
		}
		if valNode.Kind == yaml.AliasNode && valNode.Alias != nil {
			valNode = valNode.Alias
		}
		if valNode.Kind != yaml.ScalarNode {
			return &errors.ValidationError{
				Field:   keyNode.Value,
				Message: fmt.Sprintf("value at line %d has no text form", valNode.Line),
				Err:     errors.ErrUnsupported,
			}
		}
		text := valNode.Value
		if valNode.ShortTag() == "!!null" {
			text = ""
		}
		fresh.SetString(keyNode.Value, text)
	}

	*r = *fresh
	return nil
}
