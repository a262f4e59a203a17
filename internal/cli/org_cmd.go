package cli

import (
	"fmt"

	"github.com/alexanderramin/orgdir/internal/cli/formatter"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/spf13/cobra"
)

func newOrgCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "org",
		Aliases: []string{"organization"},
		Short:   "Manage organizations",
	}

	cmd.AddCommand(
		newOrgAddCmd(app),
		newOrgShowCmd(app),
		newOrgSearchCmd(app),
		newOrgRemoveCmd(app),
	)

	return cmd
}

func newOrgAddCmd(app *App) *cobra.Command {
	var name, building string
	var phones, activities []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an organization in a building",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			buildingID, err := resolveBuildingID(ctx, app, building)
			if err != nil {
				return err
			}
			activityIDs, err := resolveActivityIDs(ctx, app, activities)
			if err != nil {
				return err
			}
			o, err := app.Organizations.Create(ctx, domain.OrganizationInput{
				Name:        name,
				BuildingID:  buildingID,
				Phones:      phones,
				ActivityIDs: activityIDs,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Created organization %s %s",
				formatter.Bold(o.Name), formatter.TruncID(o.ID))))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Organization name")
	cmd.Flags().StringVar(&building, "building", "", "Building ID or ID prefix")
	cmd.Flags().StringArrayVar(&phones, "phone", nil, "Phone number (repeatable)")
	cmd.Flags().StringArrayVar(&activities, "activity", nil, "Activity ID, prefix or exact name (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("building")
	return cmd
}

func newOrgShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an organization with its building, phones and activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOrganizationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			o, err := app.Organizations.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatOrganizationDetail(o))
			return nil
		},
	}
}

func newOrgSearchCmd(app *App) *cobra.Command {
	var (
		name, building, activity, activityName string
		includeChildren                        bool
		lat, lon, radius                       float64
		skip, limit                            int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find organizations by name, building, activity or location",
		Long: "Find organizations. The first criterion given wins, in the order\n" +
			"--name, --building, --activity, --activity-name. --radius searches\n" +
			"around --lat/--lon instead. With no criteria every organization is listed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				list []*domain.OrganizationDetails
				err  error
			)
			if cmd.Flags().Changed("radius") {
				list, err = app.Organizations.ListByLocation(ctx, domain.LocationQuery{
					Latitude:     lat,
					Longitude:    lon,
					RadiusMeters: &radius,
				})
			} else {
				f := service.SearchFilter{
					Name:                   name,
					ActivityName:           activityName,
					IncludeChildActivities: includeChildren,
					Offset:                 skip,
					Limit:                  limit,
				}
				if building != "" {
					if f.BuildingID, err = resolveBuildingID(ctx, app, building); err != nil {
						return err
					}
				}
				if activity != "" {
					if f.ActivityID, err = resolveActivityID(ctx, app, activity); err != nil {
						return err
					}
				}
				list, err = app.Organizations.Search(ctx, f)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOrganizationList(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name substring (case-insensitive)")
	cmd.Flags().StringVar(&building, "building", "", "Building ID or prefix")
	cmd.Flags().StringVar(&activity, "activity", "", "Activity ID, prefix or exact name")
	cmd.Flags().StringVar(&activityName, "activity-name", "", "Exact activity name (case-insensitive)")
	cmd.Flags().BoolVar(&includeChildren, "children", true, "Include organizations linked to descendant activities")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude for --radius")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude for --radius")
	cmd.Flags().Float64Var(&radius, "radius", 0, "Search radius in meters")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of results to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (0 = all)")
	return cmd
}

func newOrgRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOrganizationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			o, err := app.Organizations.GetByID(ctx, id)
			if err != nil {
				return err
			}
			ok, err := confirmRemoval(app, yes, fmt.Sprintf("Remove organization %q?", o.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled"))
				return nil
			}
			if err := app.Organizations.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Removed organization "+formatter.Bold(o.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
