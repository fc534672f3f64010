package cmd

import (
	"fmt"
	"os"

	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/loaders"
	"github.com/df07/go-plugin-renderer/pkg/scene"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel    string // Log verbosity level
	variantName string // Variant the scene is instantiated for
	allowUnused bool   // Warn instead of failing on unused scene parameters
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:          "plugrender",
	Short:        "Plugin-based renderer core: load scenes, sample sensors, check BSDFs",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// loadScene reads the scene at path for the variant selected on the command line
func loadScene(path string) (*scene.Scene, error) {
	v, err := lanes.LookupVariant(variantName)
	if err != nil {
		return nil, err
	}
	return loaders.LoadScene(path, loaders.Options{Variant: v, AllowUnused: allowUnused})
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&variantName, "variant", lanes.ScalarRGB.Name, fmt.Sprintf("Variant %v", lanes.VariantNames()))
	rootCmd.PersistentFlags().BoolVar(&allowUnused, "allow-unused", false, "Warn about unused scene parameters instead of failing")
}
