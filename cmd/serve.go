package cmd

import (
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/web/server"
	"github.com/spf13/cobra"
)

var (
	servePort      int    // Port to serve on
	serveScenesDir string // Directory holding the served scene files
)

// serveCmd starts the web server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve progressive renders and ray inspection over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := lanes.LookupVariant(variantName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Visit http://localhost:%d/api/render?scene=<name> to start rendering\n", servePort)
		return server.NewServer(serveScenesDir, v).Start(fmt.Sprintf(":%d", servePort))
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to serve on")
	serveCmd.Flags().StringVar(&serveScenesDir, "scenes", "scenes", "Directory of YAML scenes, addressed by file stem")
	rootCmd.AddCommand(serveCmd)
}
