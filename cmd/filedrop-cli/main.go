package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filedrop/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	server     string
	profile    string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "filedrop-cli",
	Version: version,
	Short:   "Client for filedrop servers",
	Long: `filedrop-cli uploads files to and downloads files from a filedrop server.

The server URL is resolved from, in increasing precedence: the selected
profile in ~/.filedrop/config.yaml, FILEDROP_SERVER, and --server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.filedrop/config.yaml, env: FILEDROP_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL (default: "+clientcli.DefaultServer+", env: FILEDROP_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: FILEDROP_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath returns the profile file path from flag, env or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	if configPath := getConfigPath(); configPath != "" {
		cf, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := cf.GetProfile(profileName)
			if profileErr == nil {
				configs = append(configs, clientcli.ConfigFromProfile(p))
			} else if profileName != "" {
				return nil, profileErr
			}
		case errors.Is(err, fs.ErrNotExist) && cfgFile == "" && profileName == "":
			// no profile file is fine unless one was asked for
		default:
			return nil, err
		}
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Server: server},
	)

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// reportError prints err through the formatter on stderr and returns it so
// the command exits non-zero.
func reportError(cmd *cobra.Command, err error) error {
	_ = getFormatter().FormatError(cmd.ErrOrStderr(), err)
	cmd.SilenceErrors = true
	return fmt.Errorf("%s: %w", cmd.Name(), err)
}
