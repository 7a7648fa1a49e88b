package policy

import (
	"github.com/adalundhe/courseaxis/core/coursetree"
)

// inheritableSettings are the only settings that propagate from ancestors.
var inheritableSettings = map[string]struct{}{
	"format":        {},
	"hide_from_toc": {},
	"start":         {},
	"due":           {},
}

// Inheritable reports whether a setting climbs the ancestor chain.
func Inheritable(setting string) bool {
	_, ok := inheritableSettings[setting]
	return ok
}

// Resolver answers effective-setting lookups against a Policy overlay.
type Resolver struct {
	policy *Policy
}

// NewResolver creates a Resolver for one course run's policy.
func NewResolver(p *Policy) *Resolver {
	return &Resolver{policy: p}
}

// Get returns the effective value of setting for node n, and whether any
// source supplied one. Resolution order at each level: a direct attribute
// when probing (probes start at ancestors while climbing, or at n itself when
// ancestorProbe is set), then the overlay entry for the node, then, for
// inheritable settings only, the parent. Non-inheritable settings never climb.
func (r *Resolver) Get(n *coursetree.Node, setting string, ancestorProbe bool) (string, bool) {
	ancestor := ancestorProbe
	for n != nil {
		if ancestor {
			if v, ok := n.Attr(setting); ok && v != "null" && v != "" && Inheritable(setting) {
				return v, true
			}
		}
		if settings, ok := r.policy.Overrides[overlayKey(n)]; ok {
			if v, ok := settings[setting]; ok {
				// an explicit null unsets the setting; it is not a value
				// and it does not climb further
				if v == "null" {
					return "", false
				}
				return v, true
			}
		}
		if !Inheritable(setting) {
			return "", false
		}
		n = n.Parent
		ancestor = true
	}
	return "", false
}

// overlayKey builds the "<category>/<identifier>" policy key for a node,
// preferring url_name, then url_name_orig, then a placeholder.
func overlayKey(n *coursetree.Node) string {
	id := n.AttrOr("url_name", "")
	if id == "" {
		id = n.AttrOr("url_name_orig", "<no_url_name>")
	}
	return string(n.Category) + "/" + id
}
