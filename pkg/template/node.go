// Package template parses rule templates into a tree of text and element
// nodes and renders trees back to markup.
package template

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Node is one template node. Text nodes carry Text; element nodes carry
// Name, Attrs and Children.
type Node struct {
	Kind     Kind
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Attr returns the named attribute, matched case-insensitively.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[strings.ToLower(name)]
	return v, ok
}

// ChildElements returns the element children, skipping text.
func (n *Node) ChildElements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind != KindText {
			out = append(out, c)
		}
	}
	return out
}

// InnerText concatenates every descendant text node, without markup.
func (n *Node) InnerText() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n.Kind == KindText {
		sb.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}

// InnerXML renders the children of n as markup.
func (n *Node) InnerXML() string {
	return n.InnerXMLFunc(nil)
}

// InnerXMLFunc renders the children of n as markup. Elements for which
// replace returns ok are written as the escaped replacement text instead.
func (n *Node) InnerXMLFunc(replace func(*Node) (string, bool)) string {
	var sb strings.Builder
	for _, c := range n.Children {
		c.render(&sb, replace)
	}
	return sb.String()
}

// String renders n, including its own tag, as markup.
func (n *Node) String() string {
	var sb strings.Builder
	n.render(&sb, nil)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder, replace func(*Node) (string, bool)) {
	if n.Kind == KindText {
		_ = xml.EscapeText(writerOf{sb}, []byte(n.Text))
		return
	}
	if replace != nil {
		if text, ok := replace(n); ok {
			_ = xml.EscapeText(writerOf{sb}, []byte(text))
			return
		}
	}

	sb.WriteByte('<')
	sb.WriteString(n.Name)
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		_ = xml.EscapeText(writerOf{sb}, []byte(n.Attrs[k]))
		sb.WriteByte('"')
	}
	if len(n.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, c := range n.Children {
		c.render(sb, replace)
	}
	sb.WriteString("</")
	sb.WriteString(n.Name)
	sb.WriteByte('>')
}

type writerOf struct{ sb *strings.Builder }

func (w writerOf) Write(p []byte) (int, error) { return w.sb.Write(p) }

// ErrMalformed is wrapped by every Parse error.
var ErrMalformed = errors.New("malformed template")

// Parse parses template markup. The source is wrapped in a template root,
// so plain text and sibling elements are both accepted.
func Parse(src string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader("<template>" + src + "</template>"))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	var stack []*Node
	var root *Node

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Kind: KindFor(t.Name.Local),
				Name: t.Name.Local,
			}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attrs[strings.ToLower(a.Name.Local)] = a.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else {
				root = node
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			text := string(t)
			if last := lastChild(parent); last != nil && last.Kind == KindText {
				last.Text += text
				continue
			}
			parent.Children = append(parent.Children, &Node{Kind: KindText, Text: text})
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	return root, nil
}

// Text returns a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

func lastChild(n *Node) *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}
