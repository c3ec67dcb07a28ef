package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lyra-ai/mentor/internal/export"
	"github.com/lyra-ai/mentor/internal/preferences"
	"github.com/spf13/cobra"
)

func newPrefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show and change playback preferences",
		Long: `Show and change voice and playback preferences.

Preferences live in one JSON file (preferences.path in .mentor.yaml,
default ~/.mentor/preferences.json). Every change rewrites the whole file.`,
	}

	cmd.AddCommand(newPrefsShowCommand())
	cmd.AddCommand(newPrefsSetCommand())
	cmd.AddCommand(newPrefsResetCommand())

	return cmd
}

func prefsStore() (*preferences.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return preferences.NewStore(cfg.PreferencesPath()), nil
}

func newPrefsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := prefsStore()
			if err != nil {
				return err
			}
			p, err := store.Load()
			if err != nil {
				return err
			}
			data, err := export.FormatJSON(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data)) //nolint:errcheck
			return nil
		},
	}
}

func newPrefsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Long: `Change one preference.

Keys: voice, speed (0.25-4), auto_play (true/false), volume (0-1), muted (true/false).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := prefsStore()
			if err != nil {
				return err
			}
			p, err := store.Load()
			if err != nil {
				return err
			}
			if err := setPreference(&p, args[0], args[1]); err != nil {
				return err
			}
			if err := store.Save(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1]) //nolint:errcheck
			return nil
		},
	}
}

func newPrefsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := prefsStore()
			if err != nil {
				return err
			}
			if err := store.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Preferences reset to defaults.") //nolint:errcheck
			return nil
		},
	}
}

func setPreference(p *preferences.Preferences, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "voice":
		p.Voice = strings.TrimSpace(value)
	case "speed":
		p.Speed, err = strconv.ParseFloat(value, 64)
	case "volume":
		p.Volume, err = strconv.ParseFloat(value, 64)
	case "auto_play", "autoplay":
		p.AutoPlay, err = strconv.ParseBool(value)
	case "muted":
		p.Muted, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown preference %q: must be voice, speed, auto_play, volume or muted", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
