package cmd

import (
	"encoding/json"
	"fmt"

	"resin-sdk-go/internal/config"

	"github.com/spf13/cobra"
)

// Version is the current version of resin. It can be overridden at build
// time via -ldflags "-X resin-sdk-go/internal/cmd.Version=1.2.3".
var Version = "0.1.0"

// newVersionCmd prints the CLI version and the API version the default
// endpoints target.
func newVersionCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiVersion := fmt.Sprintf("v%d", config.APIVersion)
			if provider.JSONOutput {
				return json.NewEncoder(provider.Out).Encode(map[string]string{
					"version":     Version,
					"api_version": apiVersion,
				})
			}
			fmt.Fprintf(provider.Out, "resin version %s (resin API %s)\n", Version, apiVersion)
			return nil
		},
	}
}
