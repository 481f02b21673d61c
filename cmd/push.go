package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dealerhub/client"
	"dealerhub/record"
)

var (
	pushURL    string
	pushInputs []string
	pushKind   string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload CSV/Excel files to a running dealerhub server",
	Long: `Upload each input file to POST /api/import/{kind} of a running "dealerhub serve"
instance and print the import result returned by the server.

Validation and the atomic commit run on the server against its configured backend.`,
	Example: `
  # Upload dealers to a local server
  dealerhub push --url http://localhost:8080 -i ./dealers.csv --kind dealer

  # Upload several Excel files
  dealerhub push --url https://dealerhub.internal -i ./units-a.xlsx -i ./units-b.xlsx --kind unit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := record.ParseKind(pushKind)
		if err != nil {
			return err
		}

		api, err := client.NewClient(client.ClientConfig{BaseURL: pushURL})
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		if err := api.Health(ctx); err != nil {
			return fmt.Errorf("server not ready: %w", err)
		}

		var failed []string
		for _, input := range pushInputs {
			if err := checkPushInput(input); err != nil {
				return err
			}
			content, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}

			result, err := api.Import(ctx, kind, input, content)
			var statusErr *client.StatusError
			if err != nil && !errors.As(err, &statusErr) {
				return err
			}
			printImportResult(os.Stdout, input, result, importShowN)
			if err != nil {
				failed = append(failed, input)
			}
		}

		if len(failed) > 0 {
			return fmt.Errorf("upload failed for %d file(s): %s", len(failed), strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushURL, "url", "", "Base URL of the dealerhub server")
	pushCmd.Flags().StringArrayVarP(&pushInputs, "input", "i", nil, "Input file path (repeatable)")
	pushCmd.Flags().StringVarP(&pushKind, "kind", "k", "", "Record kind: dealer|unit|site")
	pushCmd.Flags().IntVar(&importShowN, "show-errors", 20, "Maximum number of rejected rows printed to stdout (0 prints none)")

	_ = pushCmd.MarkFlagRequired("url")
	_ = pushCmd.MarkFlagRequired("input")
	_ = pushCmd.MarkFlagRequired("kind")
}

// checkPushInput rejects files the server cannot parse before uploading.
func checkPushInput(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx", ".xlsm":
		return nil
	default:
		return fmt.Errorf("unsupported file extension for %s (supported: .csv, .xlsx, .xlsm)", path)
	}
}
