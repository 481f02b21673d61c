package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dealerhub/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Defaults are
shown when no config file is in use.`,
	Example: `
  # Show active configuration
  dealerhub config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file in use, showing defaults.")
		}
		fmt.Println("Configuration:")
		printConfig(os.Stdout, cfg)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "%s: %s\n", config.KeyStoreBackend, cfg.Store.Backend)
	fmt.Fprintf(w, "%s: %d\n", config.KeyStoreMaxBatchWrites, cfg.Store.MaxBatchWrites)
	switch cfg.Store.Backend {
	case "mongo":
		fmt.Fprintf(w, "%s: %s\n", config.KeyMongoURI, cfg.Store.Mongo.URI)
		fmt.Fprintf(w, "%s: %s\n", config.KeyMongoDatabase, cfg.Store.Mongo.Database)
	case "dynamodb":
		fmt.Fprintf(w, "%s: %s\n", config.KeyDynamoTable, cfg.Store.DynamoDB.Table)
		fmt.Fprintf(w, "%s: %s\n", config.KeyDynamoRegion, cfg.Store.DynamoDB.Region)
		endpoint := cfg.Store.DynamoDB.Endpoint
		if endpoint == "" {
			endpoint = "(AWS default)"
		}
		fmt.Fprintf(w, "%s: %s\n", config.KeyDynamoEndpoint, endpoint)
	default:
		fmt.Fprintf(w, "%s: %s\n", config.KeySQLitePath, cfg.Store.SQLite.Path)
	}
	fmt.Fprintf(w, "%s: %d\n", config.KeyImportWorkers, cfg.Import.Workers)
	fmt.Fprintf(w, "%s: %q\n", config.KeyImportListDelimiter, cfg.Import.ListDelimiter)
	fmt.Fprintf(w, "%s: %s\n", config.KeyImportCommitTimeout, cfg.Import.CommitTimeout)
	fmt.Fprintf(w, "%s: %s\n", config.KeyLogLevel, cfg.Log.Level)
	fmt.Fprintf(w, "%s: %s\n", config.KeyLogFormat, cfg.Log.Format)
	fmt.Fprintf(w, "%s: %d\n", config.KeyServerPort, cfg.Server.Port)
}
