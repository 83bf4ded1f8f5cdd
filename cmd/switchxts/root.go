// Package main is the switchxts command-line tool: direct bindings onto
// the AES-XTSN protocol surface (schedule/encrypt/decrypt), plus the
// NSP/NCA compression pipeline carried over from the project's earlier
// flag-based cmd/nsz.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/falk/switchxts/internal/config"
	"github.com/falk/switchxts/pkg/aesprovider"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "switchxts",
	Short: "AES-XTSN tooling for Nintendo Switch NCA/NAX0 images",
	Long: `switchxts implements AES-XTSN, the Switch variant of AES-XTS, and the
NCA/NSP container plumbing built on top of it.

Commands:
  schedule    expand a crypt/tweak key pair into a 352-byte scheduled-key blob
  encrypt     AES-XTSN-encrypt a file against a scheduled-key blob
  decrypt     AES-XTSN-decrypt a file against a scheduled-key blob
  compress    convert an NSP/NCA into its NSZ/NCZ form`,
	Version:           "0.1.0-dev",
	PersistentPreRunE: loadConfig,
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded
	aesprovider.Disable(cfg.DisableExternalAES)
	return nil
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(scheduleCmd, encryptCmd, decryptCmd, compressCmd)
}

func main() {
	Execute()
}
