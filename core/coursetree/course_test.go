package coursetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverSingleCourseLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCourseFile(t, dir, "course.xml",
		`<course org="MITx" course="8.01x" url_name="2013_Spring"/>`)
	writeCourseFile(t, dir, "policies/2013_Spring.json", `{}`)
	writeCourseFile(t, dir, "policies/2013_Fall.json", `{}`)
	writeCourseFile(t, dir, "policies/assets.json", `{}`)

	refs, err := Discover(dir, DiscoverOptions{ExcludePatterns: []string{"assets.json"}}, nil)
	require.NoError(t, err)
	require.Len(t, refs, 2, "assets.json is not a course policy")

	for _, ref := range refs {
		assert.Equal(t, "MITx", ref.Org)
		assert.Equal(t, "8.01x", ref.Number)
		assert.Equal(t, "2013_Spring", ref.URLName)
		assert.NotEmpty(t, ref.PolicyPath)
	}
}

func TestDiscoverNestedPolicyLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCourseFile(t, dir, "course.xml", `<course org="MITx" course="8.01x"/>`)
	writeCourseFile(t, dir, "policies/2013_Spring/policy.json", `{}`)

	refs, err := Discover(dir, DiscoverOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Contains(t, refs[0].PolicyPath, "policy.json")
}

func TestDiscoverRootsLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCourseFile(t, dir, "roots/2013_Spring.xml",
		`<course org="MITx" course="8.01x" url_name="2013_Spring"/>`)
	writeCourseFile(t, dir, "roots/2013_Fall.xml",
		`<course org="MITx" course="8.01x" url_name="2013_Fall"/>`)
	writeCourseFile(t, dir, "policies/2013_Spring.json", `{}`)
	writeCourseFile(t, dir, "policies/2013_Fall/policy.json", `{}`)

	refs, err := Discover(dir, DiscoverOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	byRun := map[string]CourseRef{}
	for _, ref := range refs {
		byRun[ref.URLName] = ref
	}
	assert.Contains(t, byRun["2013_Spring"].PolicyPath, "2013_Spring.json")
	assert.Contains(t, byRun["2013_Fall"].PolicyPath, "policy.json")
}

func TestDiscoverRootsMissingPolicy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCourseFile(t, dir, "roots/2013_Spring.xml",
		`<course org="MITx" course="8.01x" url_name="2013_Spring"/>`)

	refs, err := Discover(dir, DiscoverOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Empty(t, refs[0].PolicyPath)
}

func TestDiscoverNoCourse(t *testing.T) {
	t.Parallel()

	_, err := Discover(t.TempDir(), DiscoverOptions{}, nil)
	assert.ErrorIs(t, err, ErrNoCourseFile)
}

func TestDiscoverNoPolicies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCourseFile(t, dir, "course.xml", `<course org="MITx" course="8.01x"/>`)

	_, err := Discover(dir, DiscoverOptions{}, nil)
	assert.ErrorIs(t, err, ErrNoPolicies)
}

func TestDiscoverInvalidPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCourseFile(t, dir, "course.xml", `<course/>`)

	_, err := Discover(dir, DiscoverOptions{ExcludePatterns: []string{"[unclosed"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}
