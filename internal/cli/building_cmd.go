package cli

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/alexanderramin/orgdir/internal/cli/formatter"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/spf13/cobra"
)

func newBuildingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "building",
		Short: "Manage buildings",
	}

	cmd.AddCommand(
		newBuildingAddCmd(app),
		newBuildingShowCmd(app),
		newBuildingListCmd(app),
		newBuildingRemoveCmd(app),
		newBuildingNearCmd(app),
	)

	return cmd
}

func newBuildingAddCmd(app *App) *cobra.Command {
	var name, address string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a building",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &domain.Building{Name: name, Address: address, Latitude: lat, Longitude: lon}
			if err := app.Buildings.Create(cmd.Context(), b); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Created building %s %s",
				formatter.Bold(b.Name), formatter.TruncID(b.ID))))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Building name")
	cmd.Flags().StringVar(&address, "address", "", "Street address")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newBuildingShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a building and its organizations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveBuildingID(ctx, app, args[0])
			if err != nil {
				return err
			}
			b, err := app.Buildings.GetWithOrganizations(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBuildingDetail(b))
			return nil
		},
	}
}

func newBuildingListCmd(app *App) *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List buildings",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Buildings.List(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBuildingList(list))
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of buildings to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of buildings (0 = all)")
	return cmd
}

func newBuildingRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a building together with its organizations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveBuildingID(ctx, app, args[0])
			if err != nil {
				return err
			}
			b, err := app.Buildings.GetWithOrganizations(ctx, id)
			if err != nil {
				return err
			}
			ok, err := confirmRemoval(app, yes, fmt.Sprintf("Remove building %q and its %d organizations?", b.Name, len(b.Organizations)))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled"))
				return nil
			}
			if err := app.Buildings.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Removed building "+formatter.Bold(b.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newBuildingNearCmd(app *App) *cobra.Command {
	var lat, lon, radius float64

	cmd := &cobra.Command{
		Use:   "near",
		Short: "List buildings within a radius of a point, nearest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Buildings.ListWithinRadius(cmd.Context(), lat, lon, radius)
			if err != nil {
				return err
			}
			slices.SortStableFunc(list, func(a, b *domain.Building) int {
				return cmp.Compare(
					domain.DistanceMeters(lat, lon, a.Latitude, a.Longitude),
					domain.DistanceMeters(lat, lon, b.Latitude, b.Longitude),
				)
			})
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNearbyBuildings(list, lat, lon))
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the center")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the center")
	cmd.Flags().Float64Var(&radius, "radius", 1000, "Radius in meters")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}
