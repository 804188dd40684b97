// Package packs implements commands that list audio packs and persist their
// enabled state in the settings file.
package packs

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/logger"
)

// Command creates the packs command and its subcommands
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packs",
		Short: "List, enable or disable audio packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return list(cmd.OutOrStdout(), settings)
		},
	}

	cmd.AddCommand(
		toggleCommand("enable", "Enable audio packs and save the settings", true),
		toggleCommand("disable", "Disable audio packs and save the settings", false),
	)

	return cmd
}

// toggleCommand reloads the settings file so flag overrides and resolved
// paths of the running command are not written back
func toggleCommand(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <pack-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := conf.Load(conf.SettingsPath())
			if err != nil {
				return err
			}
			for _, id := range args {
				settings.SetPackEnabled(id, enabled)
			}
			if err := conf.SaveSettings(""); err != nil {
				return err
			}
			for _, id := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: enabled=%t\n", id, enabled)
			}
			return nil
		},
	}
}

func list(out io.Writer, settings *conf.Settings) error {
	log := logger.Global().Module("packs")
	packs := audiopack.NewLoader(audiopack.ConfigFromSettings(settings), log).LoadAll(settings.Packs.Roots)

	for _, pack := range packs {
		state := "enabled"
		if !settings.IsPackEnabled(pack.ID) {
			state = "disabled"
		}
		fmt.Fprintf(out, "%-40s %-8s %s\n", pack.ID, state, pack.DisplayName)
		if err := pack.Close(); err != nil {
			log.Warn("Failed to close audio pack", logger.String("pack_id", pack.ID), logger.Error(err))
		}
	}
	return nil
}
