package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteCSV writes a table as RFC 4180 CSV. The title is omitted: CSV
// consumers want a clean header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if len(t.Footer) > 0 {
		if err := cw.Write(t.Footer); err != nil {
			return fmt.Errorf("write footer: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTXT writes a table as aligned plain text.
func WriteTXT(w io.Writer, t Table) error {
	if t.Title != "" {
		if _, err := fmt.Fprintln(w, t.Title); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeLine := func(values []string) error {
		for i, v := range values {
			if i > 0 {
				if _, err := fmt.Fprint(tw, "\t"); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprint(tw, v); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(tw)
		return err
	}

	if err := writeLine(t.Headers); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := writeLine(r); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		if err := writeLine(t.Footer); err != nil {
			return err
		}
	}
	return tw.Flush()
}
