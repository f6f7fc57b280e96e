package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/editsession"
	"github.com/lpms-app/lpms/internal/maintview"
	"github.com/lpms-app/lpms/internal/nav"
	"github.com/lpms-app/lpms/internal/validation"
	"github.com/spf13/cobra"
)

var maintenancesCmd = &cobra.Command{
	Use:   "maintenances [property-id]",
	Short: "Show the maintenance records of a property",
	Long: `Shows maintenance records newest first. Without a property id the
first property of the dashboard is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMaintenances,
}

// dashboardRouter builds the manager dashboard router: the property table
// and the maintenance page rendering the view for the selected property
func dashboardRouter(view *maintview.View, out io.Writer) *nav.Router {
	router := nav.NewRouter()
	router.Handle(nav.PropertiesRoute, func(ctx context.Context, params map[string]string) error {
		return listProperties(ctx, out)
	})
	router.Handle(nav.MaintenancesRoute, func(ctx context.Context, params map[string]string) error {
		id, err := uuid.Parse(params["id"])
		if err != nil {
			return fmt.Errorf("invalid property id %q", params["id"])
		}
		view.Select(ctx, id)
		view.Wait()
		return maintview.Render(out, view.Snapshot())
	})
	return router
}

func runMaintenances(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	view := maintview.New(api.maintenances)
	defer view.Close()

	router := dashboardRouter(view, out)
	if len(args) == 1 {
		return router.Push(ctx, nav.MaintenancesPath(args[0]))
	}

	props, err := api.properties.List(ctx)
	if err != nil {
		return fmt.Errorf("list properties: %w", err)
	}
	if len(props) == 0 {
		_, err := fmt.Fprintln(out, "No results.")
		return err
	}

	fmt.Fprintf(out, "%s\n", props[0].Name)
	return nav.NewRedirect(router, nav.MaintenancesPath).Set(ctx, props[0].ID.String())
}

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Log maintenance work",
}

var maintenanceAddCmd = &cobra.Command{
	Use:   "add <property-id>",
	Short: "Add a maintenance record for one of the property's units",
	Args:  cobra.ExactArgs(1),
	RunE:  runMaintenanceAdd,
}

func init() {
	f := maintenanceAddCmd.Flags()
	f.String("unit", "", "Unit id (defaults to the only unit when the property has one)")
	f.String("description", "", "What was done (3-200 characters)")
	f.String("cost", "", "Cost, e.g. 800 or 800.50")
	f.String("date", "", "Maintenance date YYYY-MM-DD (defaults to today)")
	maintenanceCmd.AddCommand(maintenanceAddCmd)
}

func runMaintenanceAdd(cmd *cobra.Command, args []string) error {
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

	view := maintview.New(api.maintenances)
	defer view.Close()
	view.Select(ctx, p.ID)

	modal := editsession.NewMaintenanceModal(api.maintenances, newNotifier(out), refreshFunc(func(ctx context.Context) error {
		if err := view.Refresh(ctx); err != nil {
			return err
		}
		view.Wait()
		return maintview.Render(out, view.Snapshot())
	}), time.Now)
	modal.Open(*p)

	for flag, field := range map[string]string{
		"unit":        "unit",
		"description": "description",
		"cost":        "cost",
		"date":        "maintenance_date",
	} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		if err := modal.SetField(field, v); err != nil {
			return err
		}
	}

	if err := modal.Submit(ctx); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			fmt.Fprintln(out, "Please fix the following fields:")
			printFieldErrors(out, verrs)
		} else if errs := modal.Errors(); len(errs) > 0 {
			printFieldErrors(out, errs)
		}
		return err
	}
	return nil
}
