package axis

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adalundhe/courseaxis/core/coursetree"
	"github.com/adalundhe/courseaxis/core/dates"
	"github.com/adalundhe/courseaxis/core/policy"
)

// ErrBadDisplayName indicates a display name that could not be normalized to
// valid text. A record cannot be emitted safely without a usable name, so
// this aborts the walk.
var ErrBadDisplayName = errors.New("display name is not valid text")

// Config carries the walker options that the original tooling exposed as
// process-wide flags.
type Config struct {
	// ForceNoHide disables hide_from_toc pruning entirely.
	ForceNoHide bool

	// VerboseWarnings enables diagnostics for nodes excluded due to a
	// missing identifier.
	VerboseWarnings bool
}

// Walker flattens one course run's content tree into axis elements.
type Walker struct {
	resolver *policy.Resolver
	parser   *dates.Parser
	cfg      Config
	logger   *slog.Logger

	org      string
	number   string
	courseID string
}

// NewWalker creates a Walker for one course run.
func NewWalker(resolver *policy.Resolver, org, number, semester string, cfg Config, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		resolver: resolver,
		parser:   dates.NewParser(),
		cfg:      cfg,
		logger:   logger,
		org:      org,
		number:   number,
		courseID: org + "/" + number + "/" + semester,
	}
}

// walkState is the traversal context owned by a single Walk invocation: the
// running index counter and the output being accumulated.
type walkState struct {
	index int
	out   []Element
}

// frame carries the per-subtree traversal inputs passed parent to child.
type frame struct {
	seqNum      int
	path        []string
	seqType     coursetree.Category
	parentStart *time.Time
	parent      *coursetree.Node
	chapterMID  string
}

// Walk traverses the tree depth-first in pre-order and returns the axis in
// emission order. Hidden subtrees are pruned; nodes without identifiers are
// passed over but still descended into.
func (w *Walker) Walk(root *coursetree.Node) ([]Element, error) {
	state := &walkState{index: 1}
	if err := w.walk(state, root, frame{seqNum: 1}); err != nil {
		return nil, err
	}
	return state.out, nil
}

func (w *Walker) walk(state *walkState, n *coursetree.Node, f frame) error {
	urlName := n.Identifier()
	if urlName == "" {
		if dn, ok := n.Attr("display_name"); ok {
			urlName = deriveURLName(dn)
		}
	}

	if !w.cfg.ForceNoHide {
		if hide, ok := w.resolver.Get(n, "hide_from_toc", false); ok && hide != "false" {
			w.logger.Info("skipping hidden element",
				"category", n.Category,
				"name", n.AttrOr("display_name", "<noname>"),
				"hide_from_toc", hide)
			return nil
		}
	}

	data := w.extractData(n, urlName)

	var start *time.Time
	path := f.path
	seqType := f.seqType
	chapterMID := f.chapterMID
	var moduleID string

	if urlName != "" {
		name, err := normalizeDisplayName(n.AttrOr("display_name", urlName))
		if err != nil {
			w.logger.Error("cannot normalize display name", "url_name", urlName, "error", err)
			return err
		}
		if override, ok := w.resolver.Get(n, "display_name", false); ok {
			name = override
		}

		start = w.parseDate(w.lookupProbe(n, "start"), urlName, "start")
		if f.parentStart != nil && (start == nil || start.Before(*f.parentStart)) {
			w.logger.Warn("start precedes parent start, clamping",
				"url_name", urlName, "start", start, "parent_start", f.parentStart)
			start = f.parentStart
		}

		// A malformed due attribute is cleared before resolution so it
		// cannot shadow an inherited value.
		if rawDue, ok := n.Attr("due"); ok {
			if _, err := w.parser.Parse(rawDue); errors.Is(err, dates.ErrUnparsable) {
				n.SetAttr("due", "")
			}
		}
		due := w.parseDate(w.lookupProbe(n, "due"), urlName, "due")

		gformat, ok := n.Attr("format")
		if !ok {
			gformat, _ = w.resolver.Get(n, "format", false)
		}
		if gformat == "" {
			gformat = attrFromAncestors(n, "format")
		}

		switch {
		case n.Category == coursetree.CategoryChapter:
			path = []string{urlName}
		case n.Category.IsContainer():
			seqType = n.Category
			if len(f.path) > 0 {
				path = []string{f.path[0], urlName}
			} else {
				path = []string{urlName}
			}
		default:
			path = append(append([]string{}, f.path...), strconv.Itoa(f.seqNum))
		}

		moduleID = w.moduleID(n.Category, urlName, seqType, path)

		state.out = append(state.out, Element{
			CourseID:   w.courseID,
			Index:      state.index,
			URLName:    urlName,
			Category:   n.Category,
			GFormat:    gformat,
			Start:      start,
			Due:        due,
			Name:       name,
			Path:       path,
			ModuleID:   moduleID,
			Data:       data,
			ChapterMID: chapterMID,
		})
		state.index++
	} else if w.cfg.VerboseWarnings && !n.Category.BenignWithoutID() {
		parentTag := ""
		if f.parent != nil {
			parentTag = string(f.parent.Category)
		}
		w.logger.Warn("missing url_name for element",
			"category", n.Category, "attrs", n.Attrs, "parent", parentTag)
	}

	if n.Category == coursetree.CategoryChapter {
		chapterMID = moduleID
	}

	if n.Category.IsTerminal() {
		return nil
	}

	// An anonymous vertical is a grouping artifact: its children keep the
	// vertical's own sequence position instead of starting a new one.
	inheritSeq := n.Category == coursetree.CategoryVertical && urlName == ""
	seqNum := 1
	if inheritSeq {
		seqNum = f.seqNum
	}
	for _, child := range n.Children {
		if !child.Category.SkipAsChild() {
			err := w.walk(state, child, frame{
				seqNum:      seqNum,
				path:        path,
				seqType:     seqType,
				parentStart: start,
				parent:      n,
				chapterMID:  chapterMID,
			})
			if err != nil {
				return err
			}
		}
		if !inheritSeq {
			seqNum++
		}
	}
	return nil
}

// lookupProbe resolves an inheritable setting with the node's own attribute
// considered first, the mode used for the scheduling window.
func (w *Walker) lookupProbe(n *coursetree.Node, setting string) string {
	v, _ := w.resolver.Get(n, setting, true)
	return v
}

func (w *Walker) parseDate(text, urlName, setting string) *time.Time {
	t, err := w.parser.Parse(text)
	if err != nil {
		if errors.Is(err, dates.ErrUnparsable) {
			w.logger.Warn("unparsable date", "url_name", urlName, "setting", setting, "value", text)
		}
		return nil
	}
	return &t
}

// moduleID derives the flattened identifier. Page-category nodes are
// addressed externally through their container and position, so their id is
// built from path segments; everything else uses category/url_name.
func (w *Walker) moduleID(category coursetree.Category, urlName string, seqType coursetree.Category, path []string) string {
	if category == coursetree.CategoryHTML {
		end := len(path)
		if end > 3 {
			end = 3
		}
		tail := ""
		if end > 1 {
			tail = strings.Join(path[1:end], "/")
		}
		return fmt.Sprintf("%s/%s/%s/%s", w.org, w.number, seqType, tail)
	}
	return fmt.Sprintf("%s/%s/%s/%s", w.org, w.number, category, urlName)
}

// extractData pulls the category-specific payload, when any.
func (w *Walker) extractData(n *coursetree.Node, urlName string) map[string]any {
	switch n.Category {
	case coursetree.CategoryVideo:
		if id := videoID(n); id != "" {
			return map[string]any{"ytid": id}
		}
	case coursetree.CategoryProblem:
		if weight, ok := n.Attr("weight"); ok && weight != "" {
			value, err := strconv.ParseFloat(weight, 64)
			if err != nil {
				w.logger.Error("non-numeric problem weight", "url_name", urlName, "weight", weight)
				return nil
			}
			return map[string]any{"weight": value}
		}
	case coursetree.CategoryHTML:
		if id := embeddedVideoID(n); id != "" {
			w.logger.Info("found embedded video in page", "url_name", urlName, "ytid", id)
			return map[string]any{"ytid": id}
		}
	}
	return nil
}

// videoID extracts the 1.0-rate identifier from the legacy comma-separated
// rate:id list, falling back to the single-id attribute.
func videoID(n *coursetree.Node) string {
	raw := strings.ReplaceAll(n.AttrOr("youtube", ""), " ", "")
	for _, pair := range strings.Split(raw, ",") {
		rate, id, found := strings.Cut(pair, ":")
		if found && rate == "1.0" && id != "" {
			return id
		}
	}
	return n.AttrOr("youtube_id_1_0", "")
}

var embedPattern = regexp.MustCompile(`embed/([^"/?]+)`)

// embeddedVideoID looks for an iframe descendant whose src is a video embed
// URL and returns the embedded identifier.
func embeddedVideoID(n *coursetree.Node) string {
	iframe := n.Find(coursetree.Category("iframe"))
	if iframe == nil {
		return ""
	}
	src := iframe.AttrOr("src", "")
	if !strings.Contains(src, "https://www.youtube.com/embed/") {
		return ""
	}
	if m := embedPattern.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return ""
}

var urlNameReplacer = strings.NewReplacer(
	" ", "_",
	":", "_",
	".", "_",
	"(", "_",
	")", "_",
)

// deriveURLName builds an identifier from a display label, the convention
// used before identifiers were mandatory: noise characters become
// underscores and doubled underscores collapse.
func deriveURLName(displayName string) string {
	s := urlNameReplacer.Replace(strings.TrimSpace(displayName))
	return strings.ReplaceAll(s, "__", "_")
}

// attrFromAncestors climbs the parent chain looking for a plain attribute,
// the simple inheritance path that predates the policy overlay.
func attrFromAncestors(n *coursetree.Node, attr string) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if v, ok := p.Attr(attr); ok {
			return v
		}
	}
	return ""
}

// normalizeDisplayName repairs double-encoded text and rejects names that are
// not valid UTF-8. Double encoding shows up when a name was decoded as
// Latin-1 somewhere upstream: every rune fits in a byte and the byte form is
// itself multi-byte UTF-8.
func normalizeDisplayName(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: %q", ErrBadDisplayName, s)
	}
	raw := make([]byte, 0, len(s))
	multibyte := false
	for _, r := range s {
		if r > 0xFF {
			return s, nil
		}
		if r > 0x7F {
			multibyte = true
		}
		raw = append(raw, byte(r))
	}
	if multibyte && utf8.Valid(raw) {
		return string(raw), nil
	}
	return s, nil
}
