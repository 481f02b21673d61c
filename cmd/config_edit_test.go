package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigTargetPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name       string
		flagPath   string
		loadedPath string
		want       string
	}{
		{name: "flag first", flagPath: "./custom.yaml", loadedPath: "/tmp/active.yaml", want: "./custom.yaml"},
		{name: "loaded file", flagPath: "  ", loadedPath: "/tmp/active.yaml", want: "/tmp/active.yaml"},
		{name: "home fallback", want: filepath.Join(home, ".dealerhub.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := configTargetPath(tt.flagPath, tt.loadedPath)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteExampleConfigIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dealerhub.yaml")

	created, err := writeExampleConfigIfMissing(path)
	if err != nil || !created {
		t.Fatalf("expected example config to be created, created=%v err=%v", created, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected config file mode 0600, got %o", info.Mode().Perm())
	}
	if _, err := validateConfigFile(path); err != nil {
		t.Fatalf("example config should validate: %v", err)
	}

	created, err = writeExampleConfigIfMissing(path)
	if err != nil || created {
		t.Fatalf("expected existing file to be kept, created=%v err=%v", created, err)
	}
}

func TestApplyConfigAssignments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealerhub.yaml")
	if _, err := writeExampleConfigIfMissing(path); err != nil {
		t.Fatalf("write example config: %v", err)
	}

	cfg, err := applyConfigAssignments(path, []string{
		"store.backend=dynamodb",
		"store.dynamodb.table = dealerhub-records",
		"store.max_batch_writes=50",
		"import.commit_timeout=45s",
	})
	if err != nil {
		t.Fatalf("apply assignments: %v", err)
	}
	if cfg.Store.Backend != "dynamodb" || cfg.Store.DynamoDB.Table != "dealerhub-records" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Store.MaxBatchWrites != 50 || cfg.Import.CommitTimeout != 45*time.Second {
		t.Fatalf("unexpected typed values: %+v / %+v", cfg.Store, cfg.Import)
	}

	reloaded, err := validateConfigFile(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if reloaded.Store.DynamoDB.Table != "dealerhub-records" {
		t.Fatalf("expected assignment to be persisted, got %+v", reloaded.Store)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temporary files to be cleaned up, found %d entries", len(entries))
	}
}

func TestApplyConfigAssignments_InvalidResultKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealerhub.yaml")
	if _, err := writeExampleConfigIfMissing(path); err != nil {
		t.Fatalf("write example config: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	if _, err := applyConfigAssignments(path, []string{"store.backend=mongo", "store.mongo.uri="}); err == nil {
		t.Fatalf("expected validation error for mongo without uri")
	}
	if _, err := applyConfigAssignments(path, []string{"store.color=blue"}); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(after) != string(before) {
		t.Fatalf("expected config file to stay unchanged after failed edit")
	}
}

func TestParseConfigAssignment(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{input: "log.level=debug", wantKey: "log.level", wantValue: "debug"},
		{input: " Server.Port = 9090 ", wantKey: "server.port", wantValue: "9090"},
		{input: "import.list_delimiter=|", wantKey: "import.list_delimiter", wantValue: "|"},
		{input: "store.mongo.uri=mongodb://h/?a=b", wantKey: "store.mongo.uri", wantValue: "mongodb://h/?a=b"},
		{input: "log.level", wantErr: true},
		{input: "=debug", wantErr: true},
	}

	for _, tt := range tests {
		key, value, err := parseConfigAssignment(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseConfigAssignment(%q): expected error=%v, got %v", tt.input, tt.wantErr, err)
		}
		if !tt.wantErr && (key != tt.wantKey || value != tt.wantValue) {
			t.Fatalf("parseConfigAssignment(%q): expected %q=%q, got %q=%q", tt.input, tt.wantKey, tt.wantValue, key, value)
		}
	}
}

func TestPickEditor(t *testing.T) {
	tests := []struct {
		visual string
		editor string
		want   string
	}{
		{visual: "code --wait", editor: "nano", want: "code --wait"},
		{visual: " ", editor: "nano", want: "nano"},
		{want: "vi"},
	}

	for _, tt := range tests {
		if got := pickEditor(tt.visual, tt.editor); got != tt.want {
			t.Fatalf("pickEditor(%q, %q): expected %q, got %q", tt.visual, tt.editor, tt.want, got)
		}
	}
}

func TestEditorCommand(t *testing.T) {
	cmd, err := editorCommand("code --wait", "/tmp/cfg.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"code", "--wait", "/tmp/cfg.yaml"}
	if strings.Join(cmd.Args, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected command args: %#v", cmd.Args)
	}

	if _, err := editorCommand("   ", "/tmp/cfg.yaml"); err == nil {
		t.Fatalf("expected error for empty editor")
	}
}
