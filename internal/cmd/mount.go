package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/ryangreenup/sqlite-fuse/internal/config"
	"github.com/ryangreenup/sqlite-fuse/internal/db"
	"github.com/ryangreenup/sqlite-fuse/internal/notefs"
	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount DATABASE MOUNT_POINT",
	Short: "Mount a notes database at a mount point",
	Long:  `Mount projects the folders/notes schema in DATABASE onto MOUNT_POINT as a FUSE filesystem.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runMount,
}

func init() {
	rootCmd.AddCommand(mountCmd)
	mountCmd.Flags().Bool("auto_unmount", false, "automatically unmount when the owning process exits")
	mountCmd.Flags().Bool("allow-root", false, "allow root to access this mount in addition to the mounting user")
}

func runMount(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := args[0]
	mountpoint := args[1]

	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return fmt.Errorf("failed to create mountpoint: %w", err)
	}

	debug := cfg.Log.Debug
	if pf := cmd.Root().PersistentFlags(); pf.Changed("debug") {
		debug, _ = pf.GetBool("debug")
	}
	autoUnmount := cfg.Mount.AutoUnmount
	if cmd.Flags().Changed("auto_unmount") {
		autoUnmount, _ = cmd.Flags().GetBool("auto_unmount")
	}
	allowRoot := cfg.Mount.AllowRoot
	if cmd.Flags().Changed("allow-root") {
		allowRoot, _ = cmd.Flags().GetBool("allow-root")
	}

	store, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	logMountSummary(dbPath, mountpoint, store)

	server, err := notefs.MountFS(mountpoint, store, notefs.MountOptions{
		AllowRoot:   allowRoot,
		AutoUnmount: autoUnmount,
		Debug:       debug,
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to mount: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nUnmounting...")
		server.Unmount()
	}()

	fmt.Println("Filesystem mounted. Press Ctrl+C to unmount.")
	server.Wait()

	store.Close()
	return nil
}

// logMountSummary reports what is about to be attached, the way an
// operator-facing CLI announces what it just mounted.
func logMountSummary(dbPath, mountpoint string, store *db.Store) {
	var folders, notes int64
	var bodyBytes int64
	_ = store.DB().QueryRow(`SELECT COUNT(*) FROM folders WHERE deleted_time = 0`).Scan(&folders)
	_ = store.DB().QueryRow(`SELECT COUNT(*) FROM notes WHERE deleted_time = 0`).Scan(&notes)
	_ = store.DB().QueryRow(`SELECT COALESCE(SUM(LENGTH(body)), 0) FROM notes WHERE deleted_time = 0`).Scan(&bodyBytes)

	fmt.Printf("Mounting %s at %s: %s folders, %s notes, %s of note bodies\n",
		dbPath, mountpoint, humanize.Comma(folders), humanize.Comma(notes), humanize.Bytes(uint64(bodyBytes)))
}
