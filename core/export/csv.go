package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/adalundhe/courseaxis/core/axis"
)

// WriteCSV writes the axis as CSV with a header row. Every field is quoted,
// the dialect downstream loaders were written against.
func WriteCSV(w io.Writer, elements []axis.Element) error {
	bw := bufio.NewWriter(w)
	writeCSVRow(bw, FieldOrder)
	for i := range elements {
		writeCSVRow(bw, Row(&elements[i]))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeCSVRow(w *bufio.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}
