package maintview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
)

// Columns of the maintenance table, in display order
var Columns = []string{"DATE", "UNIT", "DESCRIPTION", "COST"}

// Render writes the snapshot as an aligned table
func Render(w io.Writer, s Snapshot) error {
	switch {
	case errors.Is(s.Err, context.Canceled):
		_, err := fmt.Fprintln(w, "loading interrupted")
		return err
	case s.Err != nil:
		_, err := fmt.Fprintf(w, "failed to load maintenances: %v\n", s.Err)
		return err
	case s.Loading:
		_, err := fmt.Fprintln(w, "loading...")
		return err
	case len(s.Rows) == 0:
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, c := range Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)

	for _, m := range s.Rows {
		unit := m.UnitName
		if unit == "" {
			unit = m.UnitID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Date, unit, m.Description, m.Cost)
	}
	return tw.Flush()
}
