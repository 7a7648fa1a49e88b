package coursetree

import "encoding/xml"

// Node is one element of the course tree. Attrs holds the element's XML
// attributes; Parent is nil only for the root. Terminal categories still
// carry their XML children (a problem's markup, an html page's iframes) —
// the walker decides what counts structurally.
type Node struct {
	Category Category
	Attrs    map[string]string
	Children []*Node
	Parent   *Node
}

// Attr returns the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// AttrOr returns the named attribute, or def when absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attrs[name]; ok {
		return v
	}
	return def
}

// SetAttr sets an attribute, allocating the map if needed.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Identifier returns the node's url_name, falling back to url_name_orig,
// then the empty string.
func (n *Node) Identifier() string {
	if v, ok := n.Attrs["url_name"]; ok && v != "" {
		return v
	}
	return n.AttrOr("url_name_orig", "")
}

// Find returns the first descendant with the given category in depth-first
// order, or nil.
func (n *Node) Find(category Category) *Node {
	for _, child := range n.Children {
		if child.Category == category {
			return child
		}
		if found := child.Find(category); found != nil {
			return found
		}
	}
	return nil
}

// UnmarshalXML decodes an arbitrary element and its subtree into the Node,
// wiring parent references as it descends. Character data, comments, and
// processing instructions are dropped.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.Category = Category(start.Name.Local)
	n.Attrs = make(map[string]string, len(start.Attr))
	for _, attr := range start.Attr {
		n.Attrs[attr.Name.Local] = attr.Value
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := &Node{Parent: n}
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.EndElement:
			return nil
		}
	}
}
