package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/orgdir/internal/cli/formatter"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"act"},
		Short:   "Manage the activity hierarchy",
	}

	cmd.AddCommand(
		newActivityAddCmd(app),
		newActivityShowCmd(app),
		newActivityListCmd(app),
		newActivityUpdateCmd(app),
		newActivityRemoveCmd(app),
		newActivityTreeCmd(app),
		newActivitySearchCmd(app),
		newActivityClosureCmd(app),
	)

	return cmd
}

func newActivityAddCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an activity, optionally under a parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var parentID *string
			if parent != "" {
				id, err := resolveActivityID(ctx, app, parent)
				if err != nil {
					return err
				}
				parentID = &id
			}
			a, err := app.Activities.Create(ctx, args[0], parentID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Created activity %s %s under %s",
				formatter.Bold(a.Name), formatter.TruncID(a.ID), parentLabel(ctx, app, a))))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent activity (ID, ID prefix or exact name)")
	return cmd
}

func newActivityShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show an activity with its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveActivityID(ctx, app, args[0])
			if err != nil {
				return err
			}
			node, err := app.Activities.GetWithChildren(ctx, id)
			if err != nil {
				return err
			}
			depth, err := app.Activities.DepthOf(ctx, node.ParentID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatActivityDetail(node, depth, time.Now()))
			return nil
		},
	}
}

func newActivityListCmd(app *App) *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Activities.List(cmd.Context(), skip, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivityList(list))
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of activities to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of activities (0 = all)")
	return cmd
}

func newActivityUpdateCmd(app *App) *cobra.Command {
	var name, parent string
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Rename an activity or move it under another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveActivityID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var upd domain.ActivityUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			switch {
			case toRoot && parent != "":
				return fmt.Errorf("--parent and --root are mutually exclusive")
			case toRoot:
				upd.Detach = true
			case parent != "":
				parentID, err := resolveActivityID(ctx, app, parent)
				if err != nil {
					return err
				}
				upd.ParentID = &parentID
			}
			if upd.Name == nil && !upd.Reparents() {
				return fmt.Errorf("nothing to update: pass --name, --parent or --root")
			}

			a, err := app.Activities.Update(ctx, id, upd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Updated activity %s (parent: %s)",
				formatter.Bold(a.Name), parentLabel(ctx, app, a))))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent activity")
	cmd.Flags().BoolVar(&toRoot, "root", false, "Move the activity to the top level")
	return cmd
}

func newActivityRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove an activity; its children move to the top level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveActivityID(ctx, app, args[0])
			if err != nil {
				return err
			}
			node, err := app.Activities.GetWithChildren(ctx, id)
			if err != nil {
				return err
			}

			title := fmt.Sprintf("Remove activity %q?", node.Name)
			if n := len(node.Children); n > 0 {
				title = fmt.Sprintf("Remove activity %q? Its %d child activities become top-level.", node.Name, n)
			}
			ok, err := confirmRemoval(app, yes, title)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled"))
				return nil
			}

			deleted, err := app.Activities.Delete(ctx, id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("activity %s was already removed", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Removed activity "+formatter.Bold(node.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newActivityTreeCmd(app *App) *cobra.Command {
	var root string
	var counts bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the activity hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var forest []*domain.ActivityWithChildren
			if root != "" {
				id, err := resolveActivityID(ctx, app, root)
				if err != nil {
					return err
				}
				node, err := app.Activities.GetWithChildren(ctx, id)
				if err != nil {
					return err
				}
				forest = []*domain.ActivityWithChildren{node}
			} else {
				var err error
				if forest, err = app.Activities.Tree(ctx); err != nil {
					return err
				}
			}

			var orgCounts map[string]int
			if counts {
				orgCounts = map[string]int{}
				var count func(nodes []*domain.ActivityWithChildren) error
				count = func(nodes []*domain.ActivityWithChildren) error {
					for _, n := range nodes {
						orgs, err := app.Organizations.ListByActivity(ctx, n.ID, false)
						if err != nil {
							return err
						}
						orgCounts[n.ID] = len(orgs)
						if err := count(n.Children); err != nil {
							return err
						}
					}
					return nil
				}
				if err := count(forest); err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivityTree(forest, orgCounts))
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Only print the subtree under this activity")
	cmd.Flags().BoolVar(&counts, "counts", false, "Show how many organizations link each activity directly")
	return cmd
}

func newActivitySearchCmd(app *App) *cobra.Command {
	var exact bool

	cmd := &cobra.Command{
		Use:   "search NAME",
		Short: "Find activities by name (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var list []*domain.Activity
			if exact {
				a, err := app.Activities.ByNameExact(ctx, args[0])
				if err != nil {
					return err
				}
				list = []*domain.Activity{a}
			} else {
				var err error
				if list, err = app.Activities.ByNameSubstring(ctx, args[0]); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivityList(list))
			return nil
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "Match the whole name instead of a substring")
	return cmd
}

func newActivityClosureCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "closure ID",
		Short: "List an activity and all of its descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveActivityID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ids, err := app.Activities.DescendantClosure(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatClosure(ids))
			return nil
		},
	}
}
