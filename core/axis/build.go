package axis

import (
	"fmt"
	"log/slog"

	"github.com/adalundhe/courseaxis/core/coursetree"
	"github.com/adalundhe/courseaxis/core/policy"
)

// CourseAxis is the completed result for one course run.
type CourseAxis struct {
	CourseID string
	Org      string
	Number   string
	Semester string
	Policy   *policy.Policy
	Elements []Element
}

// BuildOptions configures a build over one export directory.
type BuildOptions struct {
	Walk Config

	// PolicyExcludes are glob patterns for policy files to ignore during
	// discovery.
	PolicyExcludes []string
}

// Build discovers every course run in an export directory, walks each one,
// and resolves duplicate identifiers. A run whose policy file is missing or
// unloadable is skipped with an error log; it never reaches the walker with a
// partial policy. Build fails only when the directory holds no usable course
// at all.
func Build(dir string, opts BuildOptions, logger *slog.Logger) (map[string]*CourseAxis, error) {
	if logger == nil {
		logger = slog.Default()
	}
	refs, err := coursetree.Discover(dir, coursetree.DiscoverOptions{
		ExcludePatterns: opts.PolicyExcludes,
	}, logger)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*CourseAxis, len(refs))
	for _, ref := range refs {
		ca, err := buildRun(ref, opts, logger)
		if err != nil {
			logger.Error("skipping course run", "dir", ref.Dir, "policy", ref.PolicyPath, "error", err)
			continue
		}
		results[ca.CourseID] = ca
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no course runs could be processed in %s", dir)
	}
	return results, nil
}

func buildRun(ref coursetree.CourseRef, opts BuildOptions, logger *slog.Logger) (*CourseAxis, error) {
	if ref.PolicyPath == "" {
		return nil, fmt.Errorf("no policy file for course run %q", ref.URLName)
	}
	pol, err := policy.Load(ref.PolicyPath, logger)
	if err != nil {
		return nil, err
	}
	semester, err := pol.Semester()
	if err != nil {
		return nil, err
	}

	loader := coursetree.NewLoader(ref.Dir, logger)
	root, err := loader.LoadRun(semester)
	if err != nil {
		return nil, err
	}

	courseID := ref.Org + "/" + ref.Number + "/" + semester
	logger.Info("building course axis", "course_id", courseID)

	walker := NewWalker(policy.NewResolver(pol), ref.Org, ref.Number, semester, opts.Walk, logger)
	elements, err := walker.Walk(root)
	if err != nil {
		return nil, err
	}
	ResolveDuplicates(elements, logger)

	return &CourseAxis{
		CourseID: courseID,
		Org:      ref.Org,
		Number:   ref.Number,
		Semester: semester,
		Policy:   pol,
		Elements: elements,
	}, nil
}
