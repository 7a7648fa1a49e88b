package coursetree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrCycle indicates a pointer element referred, directly or transitively,
// back to a file already being expanded.
var ErrCycle = errors.New("pointer cycle in course tree")

// ParseFile parses a single XML file into a Node tree.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	root := &Node{}
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return root, nil
}

// Loader reads a course export directory and materializes the full content
// tree for one course run. Exports store most elements as pointers: an
// element with a url_name and no children refers to the file
// <category>/<url_name>.xml, which holds the element's real definition.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader rooted at the course export directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger}
}

// LoadRun parses course/<semester>.xml and expands every pointer element,
// returning the fully inlined tree.
func (l *Loader) LoadRun(semester string) (*Node, error) {
	path := filepath.Join(l.dir, "course", semester+".xml")
	root, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	// the run file's root carries no identifier of its own; the run is the
	// semester
	if root.AttrOr("url_name", "") == "" {
		root.SetAttr("url_name", semester)
	}
	expanding := make(map[string]struct{})
	if err := l.expand(root, expanding); err != nil {
		return nil, err
	}
	return root, nil
}

// expand inlines pointer elements in place, depth-first. The pointer's
// url_name survives the merge; a differing identifier in the referenced file
// is preserved as url_name_orig.
func (l *Loader) expand(n *Node, expanding map[string]struct{}) error {
	if l.isPointer(n) {
		urlName := n.Attrs["url_name"]
		key := string(n.Category) + "/" + urlName
		if _, busy := expanding[key]; busy {
			return fmt.Errorf("%w: %s", ErrCycle, key)
		}
		path := filepath.Join(l.dir, string(n.Category), urlName+".xml")
		def, err := ParseFile(path)
		if err != nil {
			return err
		}
		expanding[key] = struct{}{}
		defer delete(expanding, key)

		if orig := def.AttrOr("url_name", ""); orig != "" && orig != urlName {
			n.SetAttr("url_name_orig", orig)
		}
		for name, value := range def.Attrs {
			if name == "url_name" {
				continue
			}
			if _, exists := n.Attrs[name]; !exists {
				n.SetAttr(name, value)
			}
		}
		n.Children = def.Children
		for _, child := range n.Children {
			child.Parent = n
		}
	}
	for _, child := range n.Children {
		if err := l.expand(child, expanding); err != nil {
			return err
		}
	}
	return nil
}

// isPointer reports whether the node is an unexpanded file reference: it has
// a url_name, no children, and a definition file on disk.
func (l *Loader) isPointer(n *Node) bool {
	urlName, ok := n.Attrs["url_name"]
	if !ok || urlName == "" || len(n.Children) > 0 {
		return false
	}
	path := filepath.Join(l.dir, string(n.Category), urlName+".xml")
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
