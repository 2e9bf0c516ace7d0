package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newAppsCmd creates the "apps" command.
func newAppsCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List your applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			apps, err := app.API.Applications(cmd.Context())
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(apps)
			}

			if len(apps) == 0 {
				fmt.Fprintln(app.Out, "No applications")
				return nil
			}
			fmt.Fprintf(app.Out, "%-8s %-24s %-20s %s\n", "ID", "NAME", "DEVICE TYPE", "COMMIT")
			for _, a := range apps {
				fmt.Fprintf(app.Out, "%-8d %-24s %-20s %s\n", a.ID, a.AppName, a.DeviceType, a.Commit)
			}
			return nil
		},
	}

	return cmd
}
