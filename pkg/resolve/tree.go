// ABOUTME: Resolution tree of an entry for browsing
// ABOUTME: Follows every link of an entry and renders it as indented text
package resolve

import (
	"fmt"
	"io"
	"strings"

	"github.com/hxtool/hxplay/pkg/hx"
	"golang.org/x/text/language"
)

// Node is one entry in a resolution tree. Entry is nil when the link target
// is missing from the store.
type Node struct {
	ID       hx.ID
	Entry    *hx.Entry
	Language language.Tag
	Children []*Node
}

// Missing reports whether the link target was absent
func (n *Node) Missing() bool {
	return n.Entry == nil
}

// Label returns the display name: event name, hex id, or <missing>
func (n *Node) Label() string {
	if n.Entry == nil {
		return "<missing>"
	}
	return n.Entry.Name()
}

// BuildTree follows every link of the entry down to maxDepth levels
func BuildTree(store hx.Store, id hx.ID, maxDepth int) *Node {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return buildNode(store, id, language.Und, 0, maxDepth)
}

func buildNode(store hx.Store, id hx.ID, lang language.Tag, depth, maxDepth int) *Node {
	n := &Node{ID: id, Language: lang}
	e, ok := store.Entry(id)
	if !ok {
		return n
	}
	n.Entry = e
	if depth >= maxDepth {
		return n
	}

	switch e.Class {
	case hx.ClassEvent:
		ev, _ := e.Event()
		n.Children = append(n.Children, buildNode(store, ev.Link, language.Und, depth+1, maxDepth))
	case hx.ClassWaveResource:
		wr, _ := e.WaveResource()
		n.Children = append(n.Children, buildNode(store, wr.Default, language.Und, depth+1, maxDepth))
		for _, l := range wr.Links {
			n.Children = append(n.Children, buildNode(store, l.ID, l.Language, depth+1, maxDepth))
		}
	case hx.ClassProgram:
		p, _ := e.Program()
		for _, l := range p.Links {
			n.Children = append(n.Children, buildNode(store, l, language.Und, depth+1, maxDepth))
		}
	}
	return n
}

// Walk visits the tree depth-first, passing each node's depth
func (n *Node) Walk(fn func(node *Node, depth int)) {
	var walk func(*Node, int)
	walk = func(cur *Node, depth int) {
		fn(cur, depth)
		for _, c := range cur.Children {
			walk(c, depth+1)
		}
	}
	walk(n, 0)
}

// Print writes one line per node: indented label, language column and class
func (n *Node) Print(w io.Writer) error {
	var err error
	n.Walk(func(node *Node, depth int) {
		if err != nil {
			return
		}
		class := "-"
		if node.Entry != nil {
			class = node.Entry.TypeName()
		}
		label := strings.Repeat("  ", depth) + node.Label()
		_, err = fmt.Fprintf(w, "%-48s %-3s %s\n", label, hx.LanguageLabel(node.Language), class)
	})
	return err
}
