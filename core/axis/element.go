// Package axis flattens a course content tree into its axis: an ordered list
// of records, one per visible content unit, carrying position, identity,
// scheduling window, and category-specific metadata. The axis is the record
// schema consumed verbatim by the exporters.
package axis

import (
	"strings"
	"time"

	"github.com/adalundhe/courseaxis/core/coursetree"
)

// Element is one axis record. Elements are immutable once emitted, except
// that ResolveDuplicates may rewrite URLName.
type Element struct {
	// CourseID is the composite org/number/semester identifier.
	CourseID string

	// Index is the 1-based position in visitation order, unique per course.
	Index int

	// URLName is the node's local identifier.
	URLName string

	// Category is the node's content type tag.
	Category coursetree.Category

	// GFormat is the grading-format label, inherited when not set locally.
	GFormat string

	// Start and Due bound the unit's scheduling window; nil means unset.
	Start *time.Time
	Due   *time.Time

	// Name is the display label after normalization and policy override.
	Name string

	// Path is the route from the course root: [chapter] for chapters,
	// [chapter, container] for sequence-like containers, and the parent
	// path plus a positional index for anything deeper.
	Path []string

	// ModuleID is the flattened org/number/category/url_name identifier
	// (page-category nodes derive it from path segments instead).
	ModuleID string

	// Data is an optional category-specific payload, e.g.
	// {"ytid": "..."} or {"weight": 2.0}. Nil when the node has none.
	Data map[string]any

	// ChapterMID is the ModuleID of the nearest enclosing chapter, or
	// empty outside any chapter.
	ChapterMID string
}

// PathString renders Path in its serialized "/a/b/1" form.
func (e *Element) PathString() string {
	return "/" + strings.Join(e.Path, "/")
}
