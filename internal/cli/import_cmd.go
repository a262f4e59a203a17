package cli

import (
	"fmt"

	"github.com/alexanderramin/orgdir/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load buildings, activities and organizations from a YAML file",
		Long: "Load a YAML seed file. The whole file is validated first and then\n" +
			"imported in one transaction; nothing is written if any entry is rejected.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Importing "+args[0])
			}
			res, err := app.Import.Import(cmd.Context(), args[0])
			stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf(
				"Imported %d buildings, %d activities, %d organizations",
				res.BuildingCount, res.ActivityCount, res.OrganizationCount)))
			return nil
		},
	}
}
