package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/editsession"
	"github.com/lpms-app/lpms/internal/maintview"
	"github.com/lpms-app/lpms/internal/nav"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/lpms-app/lpms/internal/validation"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var propertiesCmd = &cobra.Command{
	Use:     "properties",
	Aliases: []string{"ls"},
	Short:   "List your properties with their maintenance counts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view := maintview.New(api.maintenances)
		defer view.Close()
		return dashboardRouter(view, cmd.OutOrStdout()).Push(cmd.Context(), nav.PropertiesRoute)
	},
}

// listProperties prints the dashboard table. Maintenance counts are
// fetched concurrently, a few properties at a time.
func listProperties(ctx context.Context, out io.Writer) error {
	props, err := api.properties.List(ctx)
	if err != nil {
		return fmt.Errorf("list properties: %w", err)
	}

	counts := make([]int, len(props))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range props {
		g.Go(func() error {
			rows, err := api.maintenances.List(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("maintenances for %s: %w", p.Name, err)
			}
			counts[i] = len(rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return renderProperties(out, props, counts)
}

func renderProperties(out io.Writer, props []property.Property, counts []int) error {
	if len(props) == 0 {
		_, err := fmt.Fprintln(out, "No results.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLRL\tUNITS\tFLOORS\tWATER RATE\tMAINTENANCES")
	for i, p := range props {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%d\n",
			p.ID, p.Name, p.LRL, p.NumberOfUnits, p.Floors(), p.WaterRatePerUnit, counts[i])
	}
	return tw.Flush()
}

var propertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Work with a single property",
}

var propertyEditFlags = []struct {
	flag, field, usage string
}{
	{"name", "property_name", "Property name (3-20 characters)"},
	{"lrl", "property_lrl", "Land registry reference (3-10 characters)"},
	{"water-rate", "water_rate_per_unit", "Water rate per unit, e.g. 27 or 27.50"},
	{"floors", "number_of_floors", "Number of floors"},
	{"units", "number_of_units", "Number of units"},
}

var propertyEditCmd = &cobra.Command{
	Use:   "edit <property-id>",
	Short: "Edit a property's details",
	Long: `Opens the edit form seeded from the stored property, applies the
given flags and submits. Invalid input is reported per field and nothing is
sent to the server.`,
	Args: cobra.ExactArgs(1),
	RunE: runPropertyEdit,
}

func init() {
	for _, f := range propertyEditFlags {
		propertyEditCmd.Flags().String(f.flag, "", f.usage)
	}
	propertyCmd.AddCommand(propertyEditCmd)
}

func runPropertyEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid property id %q", args[0])
	}

	p, err := api.properties.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load property: %w", err)
	}

	editor := editsession.NewPropertyEditor(api.properties, newNotifier(out), refreshFunc(func(ctx context.Context) error {
		return listProperties(ctx, out)
	}))
	editor.Open(*p)

	changed := 0
	for _, f := range propertyEditFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		changed++
		v, _ := cmd.Flags().GetString(f.flag)
		if err := editor.SetField(f.field, v); err != nil {
			return err
		}
	}
	if changed == 0 {
		return errors.New("nothing to change: pass at least one of --name, --lrl, --water-rate, --floors, --units")
	}

	if err := editor.Submit(ctx); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			fmt.Fprintln(out, "Please fix the following fields:")
			printFieldErrors(out, verrs)
		} else if errs := editor.Errors(); len(errs) > 0 {
			printFieldErrors(out, errs)
		}
		return err
	}
	return nil
}
