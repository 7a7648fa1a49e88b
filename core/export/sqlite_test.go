package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/courseaxis/core/axis"
)

func TestSQLiteExportRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "axis.db")
	exporter, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer exporter.Close()

	ca := &axis.CourseAxis{
		CourseID: "MITx/8.01x/2013_Spring",
		Org:      "MITx",
		Number:   "8.01x",
		Semester: "2013_Spring",
		Elements: sampleElements(),
	}

	runID, err := exporter.Export(context.Background(), ca)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	var runs int
	require.NoError(t, exporter.db.QueryRow(
		`SELECT COUNT(*) FROM axis_runs WHERE id = ? AND course_id = ?`,
		runID, ca.CourseID).Scan(&runs))
	assert.Equal(t, 1, runs)

	rows, err := exporter.db.Query(
		`SELECT idx, url_name, category, module_id FROM course_axis WHERE run_id = ? ORDER BY idx`, runID)
	require.NoError(t, err)
	defer rows.Close()

	type record struct {
		idx      int
		urlName  string
		category string
		moduleID string
	}
	var got []record
	for rows.Next() {
		var r record
		require.NoError(t, rows.Scan(&r.idx, &r.urlName, &r.category, &r.moduleID))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 2)
	assert.Equal(t, record{1, "week1", "chapter", "MITx/8.01x/chapter/week1"}, got[0])
	assert.Equal(t, record{2, "vid1", "video", "MITx/8.01x/video/vid1"}, got[1])
}

func TestSQLiteExportSeparateRuns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "axis.db")
	exporter, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer exporter.Close()

	ca := &axis.CourseAxis{CourseID: "MITx/8.01x/2013_Spring", Elements: sampleElements()}

	first, err := exporter.Export(context.Background(), ca)
	require.NoError(t, err)
	second, err := exporter.Export(context.Background(), ca)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	var total int
	require.NoError(t, exporter.db.QueryRow(`SELECT COUNT(*) FROM course_axis`).Scan(&total))
	assert.Equal(t, 4, total)
}
