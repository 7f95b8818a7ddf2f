package cmd

import (
	"fmt"

	"github.com/nikogura/resume-studio/pkg/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a default config file to $HOME/.resume-studio/config.json, or to the
path given with --config. Edit the file to add your Anthropic API key, or set
ANTHROPIC_API_KEY instead.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	path := getConfigFile()
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	err = config.InitConfig(path)
	if err != nil {
		err = errors.Wrap(err, "failed to write config")
		return err
	}

	fmt.Printf("Config written to %s\n", path)
	return err
}
