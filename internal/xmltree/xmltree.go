// Package xmltree decodes XML documents into a small in-memory tree that
// satisfies dash.Element.
package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mpdkit/internal/dash"
	"strings"
)

// ErrNoRoot is returned when a document contains no element.
var ErrNoRoot = errors.New("xmltree: document has no root element")

// Attr is a single attribute, keyed by its local name.
type Attr struct {
	Name  string
	Value string
}

// Node is an element of a decoded document. A document node has an empty Name
// and the root element as its only child, so its content starts with an element.
type Node struct {
	Name  string
	Attrs []Attr
	Nodes []*Node
	// text holds the character data of the element and its descendants.
	text []byte
	// elementFirst is set when the first child node is an element.
	elementFirst bool
}

var _ dash.Element = (*Node)(nil)

// TagName returns the local name of the element.
func (n *Node) TagName() string {
	if n == nil {
		return ""
	}
	return n.Name
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Children returns the child elements in document order.
func (n *Node) Children() []dash.Element {
	if n == nil {
		return nil
	}
	out := make([]dash.Element, len(n.Nodes))
	for i, c := range n.Nodes {
		out[i] = c
	}
	return out
}

// Text returns the character data of the element and its descendants.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return string(n.text)
}

// StartsWithElement reports whether the first child node is an element.
func (n *Node) StartsWithElement() bool {
	return n != nil && n.elementFirst
}

// Root returns the first element child of a document node.
func (n *Node) Root() *Node {
	if n == nil || len(n.Nodes) == 0 {
		return nil
	}
	return n.Nodes[0]
}

// Parse decodes r into a document node whose only child is the root element.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	doc := &Node{}
	stack := []*Node{doc}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			parent := stack[len(stack)-1]
			if len(parent.Nodes) == 0 && len(parent.text) == 0 {
				parent.elementFirst = true
			}
			parent.Nodes = append(parent.Nodes, node)
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			// Document-level whitespace is not content.
			for _, open := range stack[1:] {
				open.text = append(open.text, t...)
			}
		}
	}

	if len(doc.Nodes) == 0 {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}
