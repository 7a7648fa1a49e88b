// Package export serializes completed course axes. All exporters share one
// declared field order so the tabular, text, and database schemas stay in
// lockstep.
package export

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/adalundhe/courseaxis/core/axis"
)

// FieldOrder is the canonical column order for tabular exports. CourseID is
// handled separately as the leading key where an exporter needs it.
var FieldOrder = []string{
	"index",
	"url_name",
	"category",
	"gformat",
	"start",
	"due",
	"name",
	"path",
	"module_id",
	"data",
	"chapter_mid",
}

// dateLayout is the serialized instant form.
const dateLayout = "2006-01-02 15:04:05"

// Row renders one element's fields in FieldOrder.
func Row(e *axis.Element) []string {
	return []string{
		strconv.Itoa(e.Index),
		e.URLName,
		string(e.Category),
		e.GFormat,
		formatDate(e.Start),
		formatDate(e.Due),
		e.Name,
		e.PathString(),
		e.ModuleID,
		formatData(e.Data),
		e.ChapterMID,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatData(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// FileBase returns the per-course file stem, with path separators in the
// course id flattened.
func FileBase(courseID string) string {
	return "axis_" + strings.ReplaceAll(courseID, "/", "_")
}
