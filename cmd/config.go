package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dealerhub configuration file values.",
	Long: `Create, edit, display, and delete the dealerhub configuration file.

The configuration selects the storage backend and tunes the importer:
- store.backend (sqlite|mongo|dynamodb) and store.max_batch_writes
- store.sqlite.path / store.mongo.uri+database / store.dynamodb.table+region+endpoint
- import.workers / import.list_delimiter / import.commit_timeout
- log.level / log.format
- server.port

Every key can be overridden by an environment variable, e.g. DEALERHUB_STORE_BACKEND.`,
	Example: `
  # Create default config in $HOME/.dealerhub.yaml
  dealerhub config create

  # Show active config and source file
  dealerhub config show

  # Open active config in editor (creates example if missing)
  dealerhub config edit

  # Delete active config file
  dealerhub config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
