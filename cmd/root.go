/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dealerhub/config"
	"dealerhub/internal/logging"
	"dealerhub/storage"
)

var (
	cfgFile  string
	logLevel string
	dbPath   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealerhub",
	Short: "Bulk import dealers, machine units, and sites from CSV or Excel files.",
	Long: `
**********************************************
*                DEALERHUB                   *
**********************************************

This CLI validates CSV and Excel files row by row against the dealer, unit, or site
schema, commits every valid row in one atomic write, and reports each rejected row.

Storage backends:
- sqlite (default, local file)
- mongo (replica set required for transactions)
- dynamodb
`,
	Example: `
  # Create configuration file
  dealerhub config create

  # Download an empty dealer template
  dealerhub template --kind dealer --output ./dealers.csv

  # Import dealers and write rejected rows to a report
  dealerhub import -i ./dealers.csv --kind dealer --report ./dealers-errors.csv

  # Import units from an Excel export
  dealerhub import -i ./units.xlsx --kind unit

  # Export imported sites
  dealerhub export --kind site --output ./sites.xlsx

  # Serve the import API for the upload UI
  dealerhub serve --port 8080
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.dealerhub.yaml, then ./.dealerhub.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level from config: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Override store.sqlite.path from config")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	switch cmd.Name() {
	case "import", "export", "serve":
		return true
	default:
		return false
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".dealerhub" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dealerhub")
	}

	viper.SetEnvPrefix("DEALERHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // DEALERHUB_STORE_BACKEND overrides store.backend

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: dealerhub config create")
	}
}

// runtime is the loaded configuration plus the collaborators built from it.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dbPath) != "" {
		cfg.Store.SQLite.Path = dbPath
	}

	level := cfg.Log.Level
	if strings.TrimSpace(logLevel) != "" {
		level = logLevel
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

func (r *runtime) openStore(ctx context.Context) (storage.Backend, error) {
	store, err := storage.Open(ctx, r.cfg.StorageOptions())
	if err != nil {
		return nil, err
	}
	r.logger.Debug("storage opened", zap.String("backend", r.cfg.Store.Backend))
	return store, nil
}

func (r *runtime) close() {
	_ = r.logger.Sync()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
