package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sqlite-fuse",
	Short: "Mount a SQLite notes database as a filesystem",
	Long:  `sqlite-fuse projects a folders/notes SQLite database onto the host filesystem via FUSE, so notes can be browsed and edited as plain markdown files.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (not read: the config is always loaded from $XDG_CONFIG_HOME/sqlite-fuse/config.yaml, or ~/.config/sqlite-fuse/config.yaml when XDG_CONFIG_HOME is unset)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")
}
