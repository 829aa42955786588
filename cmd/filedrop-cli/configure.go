package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/filedrop/clientcli"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage server profiles in the configuration file.

Profiles save the URLs of several filedrop servers so you can switch
between them using --profile or FILEDROP_PROFILE.

Configuration is stored in ~/.filedrop/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	Args: cobra.NoArgs,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Long: `Add a new profile interactively.

You will be prompted for the server URL and whether to make the profile
the default. The server is contacted before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile.

If no name is provided, shows the default profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)
}

func printNoProfiles(w io.Writer) {
	_, _ = fmt.Fprintln(w, "No profiles configured.")
	_, _ = fmt.Fprintln(w, "Run 'filedrop-cli configure add <name>' to create one.")
}

func runConfigureList(cmd *cobra.Command, _ []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			printNoProfiles(cmd.OutOrStdout())
			return nil
		}
		return fmt.Errorf("load config: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		printNoProfiles(cmd.OutOrStdout())
		return nil
	}

	return getFormatter().FormatProfileList(cmd.OutOrStdout(), cfg.Profiles, cfg.DefaultName())
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()
	out := cmd.OutOrStdout()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = &clientcli.ConfigFile{}
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Profile '%s' already exists. Update it", name),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	serverPrompt := promptui.Prompt{
		Label:    "Server URL",
		Default:  clientcli.DefaultServer,
		Validate: clientcli.ValidateServer,
	}
	serverURL, err := serverPrompt.Run()
	if err != nil {
		return handlePromptError(out, err)
	}

	// The first profile is always the default.
	setAsDefault := len(cfg.Profiles) == 0 || (existing != nil && existing.Default)
	if !setAsDefault {
		defaultPrompt := promptui.Prompt{
			Label:     "Set as default profile",
			IsConfirm: true,
		}
		if _, promptErr := defaultPrompt.Run(); promptErr == nil {
			setAsDefault = true
		}
	}

	_, _ = fmt.Fprint(out, "Testing connection... ")
	if connErr := testServerConnection(cmd.Context(), serverURL); connErr != nil {
		_, _ = fmt.Fprintln(out, "FAILED")
		_, _ = fmt.Fprintf(out, "Warning: Could not connect to server: %v\n", connErr)

		continuePrompt := promptui.Prompt{
			Label:     "Save profile anyway",
			IsConfirm: true,
		}
		if _, promptErr := continuePrompt.Run(); promptErr != nil {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	} else {
		_, _ = fmt.Fprintln(out, "OK")
	}

	if existing != nil {
		if err := cfg.RemoveProfile(name); err != nil {
			return fmt.Errorf("replace profile: %w", err)
		}
	}

	if err := cfg.AddProfile(clientcli.Profile{
		Name:   name,
		Server: strings.TrimSuffix(serverURL, "/"),
	}); err != nil {
		return fmt.Errorf("add profile: %w", err)
	}

	if setAsDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if existing != nil {
		_, _ = fmt.Fprintf(out, "Profile '%s' updated.\n", name)
	} else {
		_, _ = fmt.Fprintf(out, "Profile '%s' added.\n", name)
	}
	if setAsDefault {
		_, _ = fmt.Fprintln(out, "Set as default profile.")
	}

	return nil
}

func runConfigureRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()
	out := cmd.OutOrStdout()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Remove profile '%s'", name),
		IsConfirm: true,
	}
	if _, promptErr := prompt.Run(); promptErr != nil {
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil //nolint:nilerr // User cancelled, not an error
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to '%s'.\n", name)
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileShow(cmd.OutOrStdout(), *p, p.Name == cfg.DefaultName())
}

// testServerConnection checks that the server answers HTTP. A filedrop
// server replies 400 with a usage hint on its root path, so any response
// counts as reachable.
func testServerConnection(ctx context.Context, serverURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	_ = resp.Body.Close()

	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(out io.Writer, err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		_, _ = fmt.Fprintln(out, "\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil
	}
	return err
}
