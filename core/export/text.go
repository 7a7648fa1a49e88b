package export

import (
	"fmt"
	"io"

	"github.com/adalundhe/courseaxis/core/axis"
)

// rowFormat is the human-readable fixed-width layout: narrow columns padded,
// free-text columns tab separated.
const rowFormat = "%8s\t%40s\t%24s\t%16s\t%16s\t%16s\t%s\t%s\t%s\t%s\t%s\n"

// WriteText writes the axis as an aligned text table with a header and a
// separator row.
func WriteText(w io.Writer, elements []axis.Element) error {
	if err := writeTextRow(w, FieldOrder); err != nil {
		return err
	}
	separator := make([]string, len(FieldOrder))
	for i := range separator {
		separator[i] = "--------"
	}
	if err := writeTextRow(w, separator); err != nil {
		return err
	}
	for i := range elements {
		if err := writeTextRow(w, Row(&elements[i])); err != nil {
			return err
		}
	}
	return nil
}

func writeTextRow(w io.Writer, fields []string) error {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	if _, err := fmt.Fprintf(w, rowFormat, args...); err != nil {
		return fmt.Errorf("write text row: %w", err)
	}
	return nil
}
