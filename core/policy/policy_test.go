package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/courseaxis/core/coursetree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadNormalizesValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pfn := filepath.Join(dir, "policy.json")
	writeFile(t, pfn, `{
		"course/2013_Spring": {
			"start": "2013-02-01T00:00:00",
			"hide_from_toc": true,
			"graceperiod": null,
			"weight": 2.5,
			"tabs": [{"type": "courseware"}]
		}
	}`)

	p, err := Load(pfn, nil)
	require.NoError(t, err)

	settings := p.Overrides["course/2013_Spring"]
	require.NotNil(t, settings)
	assert.Equal(t, "2013-02-01T00:00:00", settings["start"])
	assert.Equal(t, "true", settings["hide_from_toc"])
	assert.Equal(t, "null", settings["graceperiod"])
	assert.Equal(t, "2.5", settings["weight"])
	assert.JSONEq(t, `[{"type": "courseware"}]`, settings["tabs"])
}

func TestLoadGradingPolicy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pfn := filepath.Join(dir, "policy.json")
	writeFile(t, pfn, `{"course/2013_Spring": {}}`)
	writeFile(t, filepath.Join(dir, "grading_policy.json"),
		`{"GRADER": [{"type": "Homework", "weight": 0.4}]}`)

	p, err := Load(pfn, nil)
	require.NoError(t, err)
	require.NotNil(t, p.GradingPolicy)
	assert.Contains(t, p.GradingPolicy, "GRADER")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pfn := filepath.Join(dir, "policy.json")
	writeFile(t, pfn, `{not json`)

	_, err := Load(pfn, nil)
	assert.Error(t, err)
}

func TestSemester(t *testing.T) {
	t.Parallel()

	p := &Policy{Overrides: map[string]map[string]string{
		"chapter/week1":      {},
		"course/2013_Spring": {},
	}}
	semester, err := p.Semester()
	require.NoError(t, err)
	assert.Equal(t, "2013_Spring", semester)
}

func TestSemesterMissing(t *testing.T) {
	t.Parallel()

	p := &Policy{Overrides: map[string]map[string]string{"chapter/week1": {}}}
	_, err := p.Semester()
	assert.ErrorIs(t, err, ErrNoSemester)
}

func buildChain(t *testing.T, attrs ...map[string]string) []*coursetree.Node {
	t.Helper()
	categories := []coursetree.Category{"course", "chapter", "sequential", "problem"}
	require.LessOrEqual(t, len(attrs), len(categories))

	nodes := make([]*coursetree.Node, len(attrs))
	for i, a := range attrs {
		if a == nil {
			a = map[string]string{}
		}
		nodes[i] = &coursetree.Node{Category: categories[i], Attrs: a}
		if i > 0 {
			nodes[i].Parent = nodes[i-1]
			nodes[i-1].Children = append(nodes[i-1].Children, nodes[i])
		}
	}
	return nodes
}

func TestResolverOverlayLookup(t *testing.T) {
	t.Parallel()

	r := NewResolver(&Policy{Overrides: map[string]map[string]string{
		"problem/prob1": {"display_name": "Renamed"},
	}})
	chain := buildChain(t,
		map[string]string{"url_name": "run"},
		map[string]string{"url_name": "ch"},
		map[string]string{"url_name": "seq"},
		map[string]string{"url_name": "prob1"},
	)

	v, ok := r.Get(chain[3], "display_name", false)
	require.True(t, ok)
	assert.Equal(t, "Renamed", v)
}

func TestResolverNonInheritableDoesNotClimb(t *testing.T) {
	t.Parallel()

	r := NewResolver(&Policy{Overrides: map[string]map[string]string{
		"chapter/ch": {"display_name": "Chapter Name"},
	}})
	chain := buildChain(t,
		map[string]string{"url_name": "run"},
		map[string]string{"url_name": "ch"},
		map[string]string{"url_name": "seq"},
	)

	_, ok := r.Get(chain[2], "display_name", false)
	assert.False(t, ok)
}

func TestResolverInheritableClimbsThroughOverlay(t *testing.T) {
	t.Parallel()

	r := NewResolver(&Policy{Overrides: map[string]map[string]string{
		"chapter/ch": {"format": "Homework"},
	}})
	chain := buildChain(t,
		map[string]string{"url_name": "run"},
		map[string]string{"url_name": "ch"},
		map[string]string{"url_name": "seq"},
		map[string]string{"url_name": "prob1"},
	)

	v, ok := r.Get(chain[3], "format", false)
	require.True(t, ok)
	assert.Equal(t, "Homework", v)
}

func TestResolverAncestorAttributeBeatsOverlayAbove(t *testing.T) {
	t.Parallel()

	// the chapter carries format directly; the course overlay also has one.
	// climbing must stop at the chapter attribute.
	r := NewResolver(&Policy{Overrides: map[string]map[string]string{
		"course/run": {"format": "FromPolicy"},
	}})
	chain := buildChain(t,
		map[string]string{"url_name": "run"},
		map[string]string{"url_name": "ch", "format": "FromAttr"},
		map[string]string{"url_name": "seq"},
	)

	v, ok := r.Get(chain[2], "format", false)
	require.True(t, ok)
	assert.Equal(t, "FromAttr", v)
}

func TestResolverIgnoresNullAndEmptyAncestorAttributes(t *testing.T) {
	t.Parallel()

	r := NewResolver(&Policy{Overrides: map[string]map[string]string{
		"course/run": {"format": "FromPolicy"},
	}})
	chain := buildChain(t,
		map[string]string{"url_name": "run"},
		map[string]string{"url_name": "ch", "format": "null"},
		map[string]string{"url_name": "seq", "format": ""},
		map[string]string{"url_name": "prob1"},
	)

	v, ok := r.Get(chain[3], "format", false)
	require.True(t, ok)
	assert.Equal(t, "FromPolicy", v)
}

func TestResolverProbeChecksOwnAttribute(t *testing.T) {
	t.Parallel()

	r := NewResolver(&Policy{Overrides: map[string]map[string]string{}})
	chain := buildChain(t,
		map[string]string{"url_name": "run", "start": "2013-02-01T00:00:00"},
		map[string]string{"url_name": "ch", "start": "2013-03-01T00:00:00"},
	)

	v, ok := r.Get(chain[1], "start", true)
	require.True(t, ok)
	assert.Equal(t, "2013-03-01T00:00:00", v)
}

func TestResolverOverlayKeyFallsBackToOriginalName(t *testing.T) {
	t.Parallel()

	r := NewResolver(&Policy{Overrides: map[string]map[string]string{
		"sequential/orig": {"display_name": "By Orig"},
	}})
	n := &coursetree.Node{
		Category: "sequential",
		Attrs:    map[string]string{"url_name_orig": "orig"},
	}

	v, ok := r.Get(n, "display_name", false)
	require.True(t, ok)
	assert.Equal(t, "By Orig", v)
}

func TestResolverNullOverlayValueTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	r := NewResolver(&Policy{Overrides: map[string]map[string]string{
		"chapter/ch": {"hide_from_toc": "null", "display_name": "null"},
		"course/run": {"hide_from_toc": "true"},
	}})
	chain := buildChain(t,
		map[string]string{"url_name": "run"},
		map[string]string{"url_name": "ch"},
	)

	_, ok := r.Get(chain[1], "display_name", false)
	assert.False(t, ok, "null override is not a value")

	// a null at the node unsets the setting outright; the course-level
	// override above it must not leak through
	_, ok = r.Get(chain[1], "hide_from_toc", false)
	assert.False(t, ok)
}

func TestInheritable(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"format", "hide_from_toc", "start", "due"} {
		assert.True(t, Inheritable(s), s)
	}
	for _, s := range []string{"display_name", "graceperiod", ""} {
		assert.False(t, Inheritable(s), s)
	}
}
