package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filedrop/clientcli"
)

var downloadStdout bool

var downloadCmd = &cobra.Command{
	Use:   "download <storage-name|url> [local-path]",
	Short: "Download a file from the server",
	Long: `Download a file from the server.

The file is addressed by its storage name or by the full URL an upload
returned. Without a local path the token prefix is stripped and the file
is saved under the name it was uploaded with. Use "-" or --stdout to write
to standard output.

Examples:
  filedrop-cli download 3F2A9C1B7E4D-report.pdf
  filedrop-cli download http://files.example.com/get/3F2A9C1B7E4D-report.pdf
  filedrop-cli download 3F2A9C1B7E4D-report.pdf ./copy.pdf
  filedrop-cli download --stdout 3F2A9C1B7E4D-data.json | jq .`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	opts := clientcli.DownloadOptions{StorageName: args[0]}
	if len(args) > 1 {
		opts.LocalPath = args[1]
	}
	if downloadStdout {
		opts.LocalPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), opts)
	if err != nil {
		return reportError(cmd, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(cmd.OutOrStdout(), reader); err != nil {
			return err
		}
		// stdout carries the content; metadata goes to stderr in JSON mode only
		if jsonOutput {
			return getFormatter().FormatDownload(cmd.ErrOrStderr(), result)
		}
		return nil
	}

	return getFormatter().FormatDownload(cmd.OutOrStdout(), result)
}
