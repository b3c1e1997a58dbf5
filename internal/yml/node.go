package yml

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

type (
	Node yaml.Node
)

// Parse decodes a YAML document and returns its root node. A document node
// is unwrapped so that the caller works with the top-level mapping.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		return (*Node)(doc.Content[0]), nil
	}
	return (*Node)(&doc), nil
}

// Encode marshals v as a two-space indented YAML document.
func Encode(v interface{}) ([]byte, error) {
	buf := bytes.Buffer{}
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Lookup returns the value node for a mapping key or nil.
func (n *Node) Lookup(name string) *Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == name {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// IsNull reports whether the node is absent or an explicit null scalar.
func (n *Node) IsNull() bool {
	if n == nil {
		return true
	}
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// Missing returns the keys that are absent or null, in the order given.
func (n *Node) Missing(names ...string) []string {
	var result []string
	for _, name := range names {
		if n.Lookup(name).IsNull() {
			result = append(result, name)
		}
	}
	return result
}

// Decode decodes the node into v.
func (n *Node) Decode(v interface{}) error {
	return (*yaml.Node)(n).Decode(v)
}
