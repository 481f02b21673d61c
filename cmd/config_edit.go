package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dealerhub/config"
)

const configFileName = ".dealerhub.yaml"

var configEditSet []string

// editableConfigKeys are the keys accepted by "config edit --set".
var editableConfigKeys = []string{
	config.KeyStoreBackend,
	config.KeyStoreMaxBatchWrites,
	config.KeySQLitePath,
	config.KeyMongoURI,
	config.KeyMongoDatabase,
	config.KeyDynamoTable,
	config.KeyDynamoRegion,
	config.KeyDynamoEndpoint,
	config.KeyImportWorkers,
	config.KeyImportListDelimiter,
	config.KeyImportCommitTimeout,
	config.KeyLogLevel,
	config.KeyLogFormat,
	config.KeyServerPort,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the active config in an editor or set single keys.",
	Long: `Edit the active dealerhub config file.

Without --set the file is opened in an editor, chosen in this order:
1) $VISUAL
2) $EDITOR
3) vi

With --set key=value (repeatable) the keys are written directly, no editor is started.

A missing config file is created from the example template first. The result is
validated as dealerhub YAML config, including the settings the selected backend needs.`,
	Example: `
  # Edit active config
  dealerhub config edit

  # Switch to MongoDB without opening an editor
  dealerhub config edit --set store.backend=mongo --set store.mongo.uri=mongodb://localhost:27017/?replicaSet=rs0
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTargetPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := writeExampleConfigIfMissing(path)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("No config file found. Created example config at: %s\n", path)
		}

		var cfg *config.Config
		if len(configEditSet) > 0 {
			cfg, err = applyConfigAssignments(path, configEditSet)
		} else {
			cfg, err = editInEditor(path)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Configuration saved and validated: %s (backend: %s)\n", path, cfg.Store.Backend)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configEditCmd)

	configEditCmd.Flags().StringArrayVar(&configEditSet, "set", nil, "Set a config key without opening an editor, format key=value (repeatable)")
}

// configTargetPath picks the file config commands write to: the --configFile
// flag, then the file viper loaded, then $HOME/.dealerhub.yaml.
func configTargetPath(flagPath, loadedPath string) (string, error) {
	for _, candidate := range []string{flagPath, loadedPath} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configFileName), nil
}

func writeExampleConfigIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("creating example config failed: %w", err)
	}
	return true, nil
}

func editInEditor(path string) (*config.Config, error) {
	editor, err := editorCommand(pickEditor(os.Getenv("VISUAL"), os.Getenv("EDITOR")), path)
	if err != nil {
		return nil, err
	}
	editor.Stdin = os.Stdin
	editor.Stdout = os.Stdout
	editor.Stderr = os.Stderr
	if err := editor.Run(); err != nil {
		return nil, fmt.Errorf("opening editor failed: %w", err)
	}
	return validateConfigFile(path)
}

// applyConfigAssignments writes key=value pairs into the YAML file at path.
// The file is only replaced when the result validates.
func applyConfigAssignments(path string, assignments []string) (*config.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config failed: %w", err)
	}

	for _, assignment := range assignments {
		key, value, err := parseConfigAssignment(assignment)
		if err != nil {
			return nil, err
		}
		v.Set(key, value)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "dealerhub-edit-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("creating temporary config failed: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := v.WriteConfigAs(tmpPath); err != nil {
		return nil, fmt.Errorf("writing config failed: %w", err)
	}
	cfg, err := validateConfigFile(tmpPath)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return nil, fmt.Errorf("setting config permissions failed: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("replacing config failed: %w", err)
	}
	return cfg, nil
}

func parseConfigAssignment(assignment string) (string, string, error) {
	key, value, ok := strings.Cut(assignment, "=")
	key = strings.ToLower(strings.TrimSpace(key))
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid --set value %q (expected key=value)", assignment)
	}
	if !slices.Contains(editableConfigKeys, key) {
		return "", "", fmt.Errorf("unknown config key %q (supported: %s)", key, strings.Join(editableConfigKeys, ", "))
	}
	return key, strings.TrimSpace(value), nil
}

func validateConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading edited config failed: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return nil, fmt.Errorf("config validation failed in %s: %w", path, err)
	}
	return cfg, nil
}

func pickEditor(visual, editor string) string {
	for _, candidate := range []string{visual, editor} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "vi"
}

// editorCommand splits an editor value like "code --wait" and appends path.
func editorCommand(editorValue, path string) (*exec.Cmd, error) {
	fields := strings.Fields(editorValue)
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}
	return exec.Command(fields[0], append(fields[1:], path)...), nil
}
