package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/falk/switchxts/pkg/xtsn"
)

var (
	scheduleCryptKeyHex string
	scheduleTweakKeyHex string
	scheduleOutPath     string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Expand a crypt/tweak key pair into a 352-byte scheduled-key blob",
	RunE: func(cmd *cobra.Command, args []string) error {
		cryptKey, err := hex.DecodeString(scheduleCryptKeyHex)
		if err != nil {
			return fmt.Errorf("decoding --crypt-key: %w", err)
		}
		tweakKey, err := hex.DecodeString(scheduleTweakKeyHex)
		if err != nil {
			return fmt.Errorf("decoding --tweak-key: %w", err)
		}

		blob, err := xtsn.Schedule(cryptKey, tweakKey)
		if err != nil {
			return fmt.Errorf("scheduling keys: %w", err)
		}

		if scheduleOutPath == "" {
			fmt.Println(hex.EncodeToString(blob[:]))
			return nil
		}
		return os.WriteFile(scheduleOutPath, blob[:], 0o600)
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCryptKeyHex, "crypt-key", "", "16-byte data-cipher key, hex-encoded")
	scheduleCmd.Flags().StringVar(&scheduleTweakKeyHex, "tweak-key", "", "16-byte tweak-cipher key, hex-encoded")
	scheduleCmd.Flags().StringVar(&scheduleOutPath, "out", "", "write the 352-byte blob here instead of printing hex to stdout")
	scheduleCmd.MarkFlagRequired("crypt-key")
	scheduleCmd.MarkFlagRequired("tweak-key")
}
