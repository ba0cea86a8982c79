package dash

import "strings"

// Element is the read-only view of a parsed manifest node that the helpers in
// this package need. It carries no dependency on a particular XML parser.
type Element interface {
	// TagName returns the local name of the element.
	TagName() string
	// Attr returns the value of the named attribute and whether it is present.
	Attr(name string) (string, bool)
	// Children returns the child elements in document order.
	Children() []Element
	// Text returns the character data of the element and all of its
	// descendants in document order, like DOM textContent.
	Text() string
	// StartsWithElement reports whether the first child node is an element
	// rather than character data.
	StartsWithElement() bool
}

// FindChild returns the only child of el named name. It fails when there is
// no such child and also when there is more than one.
func FindChild(el Element, name string) (Element, bool) {
	children := FindChildren(el, name)
	if len(children) != 1 {
		return nil, false
	}
	return children[0], true
}

// FindChildren returns every child of el named name, in document order.
func FindChildren(el Element, name string) []Element {
	if el == nil {
		return nil
	}
	var found []Element
	for _, child := range el.Children() {
		if child.TagName() == name {
			found = append(found, child)
		}
	}
	return found
}

// GetContents returns the trimmed text content of el. A nil element has no
// contents, and neither has one whose content opens with a child element, such
// as a document node. Both are distinct from an element whose text is empty.
func GetContents(el Element) (string, bool) {
	if el == nil || el.StartsWithElement() {
		return "", false
	}
	return strings.TrimSpace(el.Text()), true
}

// ParseAttr looks up the named attribute and hands it to parse. A missing
// attribute fails without calling parse; otherwise the outcome of parse is
// returned unchanged.
func ParseAttr[T any](el Element, name string, parse func(string) (T, bool)) (T, bool) {
	var zero T
	if el == nil {
		return zero, false
	}
	v, ok := el.Attr(name)
	if !ok {
		return zero, false
	}
	return parse(v)
}

// ParseAttrDefault is like ParseAttr but yields def when the attribute is missing.
func ParseAttrDefault[T any](el Element, name string, parse func(string) (T, bool), def T) (T, bool) {
	if el != nil {
		if v, ok := el.Attr(name); ok {
			return parse(v)
		}
	}
	return def, true
}
