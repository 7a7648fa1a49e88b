package coursetree

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

var (
	// ErrNoCourseFile indicates the directory holds neither roots/ nor course.xml.
	ErrNoCourseFile = errors.New("no course.xml or roots directory found")

	// ErrNoPolicies indicates no policy files were found for a course.xml export.
	ErrNoPolicies = errors.New("no policy files found")

	// ErrInvalidPattern indicates a policy exclude pattern failed to compile.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)

// CourseRef identifies one course run found in an export directory, before
// its policy or content tree is loaded. PolicyPath may be empty when the
// expected policy file is missing; the caller decides how to treat that.
type CourseRef struct {
	Dir        string
	Org        string
	Number     string
	URLName    string // run identifier from the root element; may be empty
	PolicyPath string
}

// DiscoverOptions controls course discovery.
type DiscoverOptions struct {
	// ExcludePatterns are glob patterns matched against policy file base
	// names; matching files are not treated as course policies
	// (e.g. "assets.json").
	ExcludePatterns []string
}

// Discover finds the course runs in an export directory, following the two
// layout conventions: a roots/ directory with one XML root per run, or a
// single course.xml with one policy file per run under policies/.
func Discover(dir string, opts DiscoverOptions, logger *slog.Logger) ([]CourseRef, error) {
	if logger == nil {
		logger = slog.Default()
	}
	excludes, err := compilePatterns(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	rootsDir := filepath.Join(dir, "roots")
	if info, err := os.Stat(rootsDir); err == nil && info.IsDir() {
		return discoverRoots(dir, rootsDir, logger)
	}
	return discoverPolicies(dir, excludes, logger)
}

// discoverRoots handles the roots/*.xml convention: each root file is a
// course run, with its policy at policies/<url_name>.json or
// policies/<url_name>/policy.json.
func discoverRoots(dir, rootsDir string, logger *slog.Logger) ([]CourseRef, error) {
	paths, err := filepath.Glob(filepath.Join(rootsDir, "*.xml"))
	if err != nil {
		return nil, err
	}
	var refs []CourseRef
	for _, path := range paths {
		root, err := ParseFile(path)
		if err != nil {
			logger.Error("skipping unreadable course root", "path", path, "error", err)
			continue
		}
		ref := refFromRoot(dir, root)
		ref.PolicyPath = findPolicy(dir, ref.URLName)
		if ref.PolicyPath == "" {
			logger.Error("missing policy file for course root", "root", path, "url_name", ref.URLName)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// discoverPolicies handles the single course.xml convention: one run per
// policy file under policies/.
func discoverPolicies(dir string, excludes []glob.Glob, logger *slog.Logger) ([]CourseRef, error) {
	coursePath := filepath.Join(dir, "course.xml")
	root, err := ParseFile(coursePath)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoCourseFile, dir)
		}
		return nil, err
	}

	policies, err := filepath.Glob(filepath.Join(dir, "policies", "*.json"))
	if err != nil {
		return nil, err
	}
	policies = filterExcluded(policies, excludes)
	if len(policies) == 0 {
		policies, err = filepath.Glob(filepath.Join(dir, "policies", "*", "policy.json"))
		if err != nil {
			return nil, err
		}
	}
	if len(policies) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPolicies, dir)
	}

	refs := make([]CourseRef, 0, len(policies))
	for _, pfn := range policies {
		ref := refFromRoot(dir, root)
		ref.PolicyPath = pfn
		refs = append(refs, ref)
	}
	logger.Info("discovered course runs", "dir", dir, "count", len(refs))
	return refs, nil
}

func refFromRoot(dir string, root *Node) CourseRef {
	return CourseRef{
		Dir:     dir,
		Org:     root.AttrOr("org", ""),
		Number:  root.AttrOr("course", ""),
		URLName: root.AttrOr("url_name", ""),
	}
}

// findPolicy resolves the policy file for a named run, trying the flat and
// nested layouts in turn.
func findPolicy(dir, urlName string) string {
	if urlName == "" {
		return ""
	}
	candidates := []string{
		filepath.Join(dir, "policies", urlName+".json"),
		filepath.Join(dir, "policies", urlName, "policy.json"),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func filterExcluded(paths []string, excludes []glob.Glob) []string {
	if len(excludes) == 0 {
		return paths
	}
	kept := paths[:0]
	for _, path := range paths {
		base := filepath.Base(path)
		excluded := false
		for _, g := range excludes {
			if g.Match(base) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, path)
		}
	}
	return kept
}
