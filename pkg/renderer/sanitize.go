package renderer

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Error-indicator denylist. The external engine marks its injected error
// artifacts with these classes, id fragments, and ARIA descriptions.
var (
	denyClassFragment = "error"
	denyIDFragment    = "error"
	denyAriaRoles     = map[string]bool{"error": true, "syntax-error": true}
)

// Sanitize strips every element matching the error-indicator denylist
// from the markup and returns the cleaned string. Removal is idempotent:
// sanitizing already-clean markup returns it structurally unchanged.
//
// Sanitize is defensive by contract: markup that cannot be parsed at all
// is returned as-is rather than dropped.
func Sanitize(markup string) string {
	if markup == "" {
		return markup
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return markup
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if denied(n) {
			continue
		}
		purgeTree(n)
		if err := html.Render(&buf, n); err != nil {
			return markup
		}
	}
	return buf.String()
}

// purgeTree removes denylisted descendants of n in place. Nodes already
// detached by a concurrent or earlier sweep are simply not found again,
// which makes repeated purging safe.
func purgeTree(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if denied(child) {
			n.RemoveChild(child)
		} else {
			purgeTree(child)
		}
		child = next
	}
}

// denied reports whether a node matches the error-indicator denylist.
func denied(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "class":
			// Fragment match: the engine suffixes its error classes
			// with generated counters, e.g. error-icon-1.
			if strings.Contains(strings.ToLower(attr.Val), denyClassFragment) {
				return true
			}
		case "id":
			if strings.Contains(strings.ToLower(attr.Val), denyIDFragment) {
				return true
			}
		case "aria-roledescription", "role":
			if denyAriaRoles[strings.ToLower(attr.Val)] {
				return true
			}
		}
	}
	return false
}

// containsDenied reports whether the markup still carries any denylisted
// element. Used by sweeps to decide whether a purge pass is needed.
func containsDenied(markup string) bool {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return false
	}
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if denied(n) {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	for _, n := range nodes {
		if walk(n) {
			return true
		}
	}
	return false
}
