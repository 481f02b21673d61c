package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dealerhub/config"
	"dealerhub/storage"
)

var configCreateBackend string

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a dealerhub config file with every store and import key.",
	Long: `Write a dealerhub config file from the example template.

The file lists store.backend, store.max_batch_writes and the connection keys of
the sqlite, mongo and dynamodb backends, followed by the import settings
(workers, list_delimiter, commit_timeout), logging and the server port.

--backend preselects store.backend; the new file is validated for that backend.
The target is --configFile, else the loaded config, else $HOME/.dealerhub.yaml.
An existing file is never overwritten.`,
	Example: `
  # Create $HOME/.dealerhub.yaml for the default SQLite backend
  dealerhub config create

  # Create a project config that imports into DynamoDB
  dealerhub --configFile ./dealerhub.yaml config create --backend dynamodb
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTargetPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		cfg, err := createConfigFile(path, configCreateBackend)
		if err != nil {
			return err
		}
		if cfg == nil {
			fmt.Printf("Config file already exists at: %s\n", path)
			return nil
		}

		fmt.Printf("New config file created at: %s (backend: %s)\n", path, cfg.Store.Backend)
		return nil
	},
}

// createConfigFile writes the example config to path with store.backend set
// to backend, or the template default when backend is empty. It returns nil
// without error when path already exists.
func createConfigFile(path, backend string) (*config.Config, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != "" && !slices.Contains([]string{storage.BackendSQLite, storage.BackendMongo, storage.BackendDynamoDB}, backend) {
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownBackend, backend)
	}

	created, err := writeExampleConfigIfMissing(path)
	if err != nil || !created {
		return nil, err
	}

	if backend == "" {
		return validateConfigFile(path)
	}
	return applyConfigAssignments(path, []string{config.KeyStoreBackend + "=" + backend})
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().StringVar(&configCreateBackend, "backend", "", "Preselect store.backend: sqlite|mongo|dynamodb")
}
