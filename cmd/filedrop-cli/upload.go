package main

import (
	"github.com/spf13/cobra"

	"github.com/sagarc03/filedrop/clientcli"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [name]",
	Short: "Upload a file to the server",
	Long: `Upload a file to the server.

The file is stored under a fresh token prefix, so uploading the same name
twice never overwrites. The name defaults to the file's base name.

Examples:
  filedrop-cli upload ./report.pdf
  filedrop-cli upload ./out.bin build-42.bin
  filedrop-cli upload -q ./report.pdf | xargs curl -O`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts := clientcli.UploadOptions{LocalPath: args[0]}
	if len(args) > 1 {
		opts.Name = args[1]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return reportError(cmd, err)
	}

	return getFormatter().FormatUpload(cmd.OutOrStdout(), result)
}
