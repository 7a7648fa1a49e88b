// Package coursetree models a parsed course-content tree: a hierarchy of
// nodes (chapters, sequentials, verticals, leaf content units) loaded from a
// course export directory. Nodes keep a parent back-reference so settings can
// be resolved by climbing the ancestor chain.
package coursetree

// Category identifies a node's content type (the element tag in course XML).
type Category string

const (
	CategoryCourse        Category = "course"
	CategoryChapter       Category = "chapter"
	CategorySequential    Category = "sequential"
	CategoryProblemset    Category = "problemset"
	CategoryVideosequence Category = "videosequence"
	CategoryProctor       Category = "proctor"
	CategoryRandomize     Category = "randomize"
	CategoryVertical      Category = "vertical"
	CategoryProblem       Category = "problem"
	CategoryVideo         Category = "video"
	CategoryHTML          Category = "html"
	CategoryDiscussion    Category = "discussion"
	CategoryCustomTag     Category = "customtag"
	CategoryPollQuestion  Category = "poll_question"
	CategoryOpenEnded     Category = "combinedopenended"
	CategoryMetadata      Category = "metadata"
)

// containerCategories are the sequence-like containers that sit directly
// under a chapter. They reset the path to [chapter, self] and become the
// active sequence type for their descendants.
var containerCategories = map[Category]struct{}{
	CategorySequential:    {},
	CategoryProblemset:    {},
	CategoryVideosequence: {},
	CategoryProctor:       {},
	CategoryRandomize:     {},
}

// terminalCategories never contribute structural children to the axis, even
// when the underlying XML has child elements (e.g. problem internals).
var terminalCategories = map[Category]struct{}{
	CategoryHTML:         {},
	CategoryProblem:      {},
	CategoryDiscussion:   {},
	CategoryCustomTag:    {},
	CategoryPollQuestion: {},
	CategoryOpenEnded:    {},
	CategoryMetadata:     {},
}

// skippedChildCategories are child elements never descended into.
var skippedChildCategories = map[Category]struct{}{
	CategoryDiscussion: {},
	Category("source"): {},
}

// benignWithoutID are categories expected to lack an identifier; a missing
// url_name on one of these is not worth a diagnostic.
var benignWithoutID = map[Category]struct{}{
	Category("transcript"): {},
	Category("wiki"):       {},
	CategoryMetadata:       {},
}

// IsContainer reports whether the category is a sequence-like container.
func (c Category) IsContainer() bool {
	_, ok := containerCategories[c]
	return ok
}

// IsTerminal reports whether the category's children are excluded from the axis.
func (c Category) IsTerminal() bool {
	_, ok := terminalCategories[c]
	return ok
}

// SkipAsChild reports whether a child of this category is skipped outright.
func (c Category) SkipAsChild() bool {
	_, ok := skippedChildCategories[c]
	return ok
}

// BenignWithoutID reports whether a missing identifier is expected for this
// category.
func (c Category) BenignWithoutID() bool {
	_, ok := benignWithoutID[c]
	return ok
}

// String returns the category's tag form.
func (c Category) String() string {
	return string(c)
}
