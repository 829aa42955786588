package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filedrop/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filedrop [flags]",
	Short:   "Minimal HTTP file drop server",
	Long: `filedrop accepts files with "curl -T <file> http://host/" and replies
with a ready-to-run "curl -O" command for retrieving them.

Configuration is read from defaults, a .env file, FILEDROP_* environment
variables, a config file and flags, later sources overriding earlier ones.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringSlice("config", nil, "config file path, repeatable (default: ./config.yaml)")
	flags.String("ip", "", "IP address to listen on (default: 127.0.0.1, env: FILEDROP_IP)")
	flags.Int("port", 0, "port to listen on (default: 8000, env: FILEDROP_PORT)")
	flags.Int("public-port", 0, "port to use in URLs (default: listen port, env: FILEDROP_PUBLIC_PORT)")
	flags.String("host", "", "host name to use in URLs (default: localhost, env: FILEDROP_HOST)")
	flags.String("storage", "", "path to upload storage directory (default: storage, env: FILEDROP_STORAGE)")
	flags.String("size-limit", "", "upload size limit, bytes or e.g. 50MiB (default: 50MiB, env: FILEDROP_SIZE_LIMIT)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default: info, env: FILEDROP_LOG_LEVEL)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	// Arguments were already validated; later failures are not usage errors.
	cmd.SilenceUsage = true

	configFiles, _ := cmd.Flags().GetStringSlice("config")

	bootstrap := newLogger(config.LogConfig{Level: bootstrapLevel(cmd), Format: "text"}, os.Stderr)

	cfg, err := config.Load(configFiles, cmd.Flags(), config.WithLogger(bootstrap))
	if err != nil {
		return err
	}

	ctx := config.WithContext(cmd.Context(), cfg)
	ctx = withLogger(ctx, newLogger(cfg.Log, os.Stderr))
	cmd.SetContext(ctx)
	return nil
}

func bootstrapLevel(cmd *cobra.Command) string {
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		return level
	}
	if level, ok := os.LookupEnv("FILEDROP_LOG_LEVEL"); ok {
		return level
	}
	return "info"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
