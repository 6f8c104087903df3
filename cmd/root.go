package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/ovall/dentavia_backend/cmd/http"
	systemcmd "github.com/ovall/dentavia_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "dentavia",
	Short: "Dentavia clinic appointment scheduling and reminder backend.",
	Long: `Dentavia is the scheduling backend for dental clinics: slot availability,
appointment booking with conflict detection, and time-windowed reminder delivery.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
