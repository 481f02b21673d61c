package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteForce bool

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the dealerhub config file that is currently loaded.",
	Long: `Remove the config file dealerhub loaded for this run: --configFile, else
$HOME/.dealerhub.yaml, else ./.dealerhub.yaml.

Only the file is removed. Imported records stay in the configured backend; use
"dealerhub delete" for those. Afterwards dealerhub falls back to the built-in
defaults (sqlite backend, dealerhub.db) and DEALERHUB_* environment variables.

The prompt requires typing exactly "Y" unless --force is given.`,
	Example: `
  # Remove the active config after confirming
  dealerhub config delete

  # Remove a project config without a prompt
  dealerhub --configFile ./dealerhub.yaml config delete --force
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.ConfigFileUsed()
		if err := deleteConfigFile(path, configDeleteForce, deletePromptInput, deletePromptOutput); err != nil {
			return err
		}
		fmt.Printf("Configuration file deleted: %s\n", path)
		return nil
	},
}

func deleteConfigFile(path string, force bool, input io.Reader, output io.Writer) error {
	if path == "" {
		return fmt.Errorf("no configuration file loaded; defaults and DEALERHUB_* variables are in effect")
	}

	if !force {
		confirmed, err := confirmDeletePrompt(input, output, fmt.Sprintf("config file %q", path))
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("config delete aborted: confirmation was not 'Y'")
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("error deleting configuration file: %w", err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)

	configDeleteCmd.Flags().BoolVar(&configDeleteForce, "force", false, "Delete without the confirmation prompt")
}
