package cmd

import (
	"fmt"

	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/spf13/cobra"
)

// pluginsCmd lists the registered plugins and their base classes
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered plugins",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, name := range plugin.Default.Names() {
			parent, _ := plugin.Default.Parent(name)
			fmt.Fprintf(out, "%-12s %s\n", name, parent)
		}
	},
}

// describeCmd prints the constructed scene graph
var describeCmd = &cobra.Command{
	Use:   "describe <scene.yaml>",
	Short: "Load a scene and print its objects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScene(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(describeCmd)
}
