package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/falk/switchxts/pkg/xtsn"
)

type cryptFlags struct {
	keysPath     string
	inPath       string
	outPath      string
	sectorSize   uint32
	counterHi    uint64
	counterLo    uint64
	skippedBytes uint64
}

var encryptFlags, decryptFlags cryptFlags

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "AES-XTSN-encrypt a file against a scheduled-key blob",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyConfigDefaults(cmd, &encryptFlags)
		return runCrypt(encryptFlags, xtsn.Encrypt)
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "AES-XTSN-decrypt a file against a scheduled-key blob",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyConfigDefaults(cmd, &decryptFlags)
		return runCrypt(decryptFlags, xtsn.Decrypt)
	},
}

// applyConfigDefaults fills in flags the user left at their registered
// default from the loaded config file, so switchxts.yaml's sector_size
// only takes effect when --sector-size wasn't passed explicitly.
func applyConfigDefaults(cmd *cobra.Command, f *cryptFlags) {
	if cfg == nil {
		return
	}
	if !cmd.Flags().Changed("sector-size") && cfg.SectorSize != 0 {
		f.sectorSize = cfg.SectorSize
	}
}

type cryptFunc func(roundKeys, buf []byte, counterHi, counterLo uint64, sectorSize uint32, skippedBytes uint64) ([]byte, error)

func runCrypt(f cryptFlags, op cryptFunc) error {
	roundKeys, err := os.ReadFile(f.keysPath)
	if err != nil {
		return fmt.Errorf("reading scheduled-key blob: %w", err)
	}

	buf, err := os.ReadFile(f.inPath)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	out, err := op(roundKeys, buf, f.counterHi, f.counterLo, f.sectorSize, f.skippedBytes)
	if err != nil {
		return fmt.Errorf("running AES-XTSN: %w", err)
	}

	if f.outPath == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(f.outPath, out, 0o644)
}

func registerCryptFlags(cmd *cobra.Command, f *cryptFlags) {
	cmd.Flags().StringVar(&f.keysPath, "keys", "", "path to a 352-byte scheduled-key blob produced by 'schedule'")
	cmd.Flags().StringVar(&f.inPath, "in", "", "input file")
	cmd.Flags().StringVar(&f.outPath, "out", "", "output file (default: stdout)")
	cmd.Flags().Uint32Var(&f.sectorSize, "sector-size", 512, "sector size in bytes, a positive multiple of 16")
	cmd.Flags().Uint64Var(&f.counterHi, "counter-hi", 0, "high 64 bits of the starting sector counter")
	cmd.Flags().Uint64Var(&f.counterLo, "counter-lo", 0, "low 64 bits of the starting sector counter")
	cmd.Flags().Uint64Var(&f.skippedBytes, "skipped-bytes", 0, "bytes already consumed from the starting sector, for resuming mid-sector")
	cmd.MarkFlagRequired("keys")
	cmd.MarkFlagRequired("in")
}

func init() {
	registerCryptFlags(encryptCmd, &encryptFlags)
	registerCryptFlags(decryptCmd, &decryptFlags)
}
