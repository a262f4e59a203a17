package cli

import (
	"context"

	"github.com/alexanderramin/orgdir/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Activities    service.ActivityService
	Buildings     service.BuildingService
	Organizations service.OrganizationService
	Import        service.ImportService

	// Serve runs the HTTP API until ctx is cancelled. Nil disables "serve".
	Serve func(ctx context.Context) error

	// IsInteractive reports whether stdin is a terminal. Confirmation
	// prompts and spinners only run when it returns true.
	IsInteractive func() bool

	// Confirm asks a yes/no question. Defaults to a huh form.
	Confirm func(title string) (bool, error)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return huhConfirm(title)
}

// NewRootCmd creates the top-level "orgdir" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "orgdir",
		Short:         "Directory of organizations, buildings and activities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newActivityCmd(app),
		newBuildingCmd(app),
		newOrgCmd(app),
		newImportCmd(app),
		newServeCmd(app),
	)

	return root
}
