package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/falk/switchxts/pkg/fs"
	"github.com/falk/switchxts/pkg/keys"
)

var (
	compressKeysPath string
	compressLevel    int
)

var compressCmd = &cobra.Command{
	Use:   "compress <file>",
	Short: "Convert an NSP or loose NCA into its NSZ/NCZ form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := compressLevel
		if level < 1 || level > 22 {
			level = fs.DefaultCompressionLevel
			if cfg != nil && cfg.CompressionLevel >= 1 && cfg.CompressionLevel <= 22 {
				level = cfg.CompressionLevel
			}
		}

		keysPath := compressKeysPath
		if keysPath == "" && cfg != nil {
			keysPath = cfg.KeysPath
		}

		var err error
		if keysPath != "" {
			err = keys.Load(keysPath)
		} else {
			err = keys.LoadDefault()
		}
		if err != nil {
			fmt.Printf("Warning: could not load keys: %v\n", err)
			fmt.Println("Provide a keys file with --keys or place one at ~/.switch/prod.keys")
		} else {
			keys.DeriveKeys()
		}

		return runCompress(args[0], level)
	},
}

func init() {
	compressCmd.Flags().StringVar(&compressKeysPath, "keys", "", "path to prod.keys (overrides the config file's keys_path)")
	compressCmd.Flags().IntVar(&compressLevel, "level", 0, "zstd compression level 1-22 (0 = use config/default)")
}

func runCompress(inputFile string, compressionLevel int) error {
	fmt.Printf("Processing %s...\n", inputFile)

	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	pfsFiles, pfsHeaderSize, err := fs.OpenPfs0(f)
	if err == nil {
		return processNsp(inputFile, f, pfsFiles, pfsHeaderSize, compressionLevel)
	}
	return processSingleNca(inputFile, f, compressionLevel)
}

func processNsp(inputPath string, f *os.File, files []fs.Pfs0File, headerSize int64, compressionLevel int) error {
	fmt.Printf("Found valid PFS0 (NSP) with %d files.\n", len(files))

	titleKey := findTitleKey(f, files, headerSize)

	outputPath := inputPath
	if strings.HasSuffix(outputPath, ".nsp") {
		outputPath = outputPath[:len(outputPath)-4] + ".nsz"
	} else {
		outputPath += ".nsz"
	}
	fmt.Printf("Creating %s...\n", outputPath)

	outputNames := make([]string, len(files))
	shouldCompress := make([]bool, len(files))
	for i, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		if ext != ".nca" {
			outputNames[i] = file.Name
			continue
		}

		offset := int64(file.Entry.DataOffset) + headerSize
		sr := io.NewSectionReader(f, offset, int64(file.Entry.DataSize))
		nca, err := fs.NewNCA(sr)
		if err != nil {
			outputNames[i] = file.Name
			continue
		}
		if titleKey != nil {
			nca.Header.TitleKey = titleKey
		}

		ct := nca.Header.ContentType
		if (ct == 0 || ct == 5) && file.Entry.DataSize > 0x4000 {
			shouldCompress[i] = true
			outputNames[i] = strings.TrimSuffix(file.Name, ext) + ".ncz"
		} else {
			outputNames[i] = file.Name
		}
	}

	writer, err := fs.NewPfs0Writer(outputPath, outputNames)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer writer.Close()

	for i, file := range files {
		runID := uuid.New()
		offset := int64(file.Entry.DataOffset) + headerSize
		size := int64(file.Entry.DataSize)
		sr := io.NewSectionReader(f, offset, size)

		fmt.Printf("[%s] [%d/%d] %s -> %s... ", runID, i+1, len(files), file.Name, outputNames[i])

		if shouldCompress[i] {
			fmt.Print("compressing... ")
			if err := writer.AddCompressedFile(i, sr, size, titleKey, compressionLevel); err != nil {
				return fmt.Errorf("compressing %s: %w", file.Name, err)
			}
			fmt.Println("done.")
		} else {
			if err := writer.AddFile(i, sr, size); err != nil {
				return fmt.Errorf("adding %s: %w", file.Name, err)
			}
			fmt.Println("added.")
		}
	}
	fmt.Println("Done!")
	return nil
}

// findTitleKey locates the .tik ticket in an NSP's file list and decrypts
// its embedded common-crypto title key against the master-key generation
// of the first .nca in the archive (archives are assumed to share one
// generation across their contents).
func findTitleKey(f *os.File, files []fs.Pfs0File, headerSize int64) []byte {
	var tikFile *fs.Pfs0File
	for i := range files {
		if strings.ToLower(filepath.Ext(files[i].Name)) == ".tik" {
			tikFile = &files[i]
			break
		}
	}
	if tikFile == nil {
		return nil
	}
	fmt.Printf("Found ticket: %s\n", tikFile.Name)

	tikBuf := make([]byte, 0x190)
	offset := int64(tikFile.Entry.DataOffset) + headerSize
	if _, err := f.ReadAt(tikBuf, offset); err != nil {
		fmt.Printf("Warning: failed to read ticket: %v\n", err)
		return nil
	}

	for _, ncaFile := range files {
		if strings.ToLower(filepath.Ext(ncaFile.Name)) != ".nca" {
			continue
		}
		sr := io.NewSectionReader(f, int64(ncaFile.Entry.DataOffset)+headerSize, int64(ncaFile.Entry.DataSize))
		nca, err := fs.NewNCA(sr)
		if err != nil {
			continue
		}

		keyGen := int(nca.Header.KeyGeneration)
		if nca.Header.KeyGeneration2 > nca.Header.KeyGeneration {
			keyGen = int(nca.Header.KeyGeneration2)
		}
		keyGen--
		if keyGen < 0 {
			keyGen = 0
		}

		titleKey, err := keys.DecryptTicketTitleKey(tikBuf, keyGen)
		if err != nil {
			fmt.Printf("Failed to decrypt title key: %v\n", err)
			return nil
		}
		fmt.Printf("Decrypted title key: %x...\n", titleKey[:4])
		return titleKey
	}
	return nil
}

func processSingleNca(inputFile string, f *os.File, compressionLevel int) error {
	nca, err := fs.NewNCA(f)
	if err != nil {
		return fmt.Errorf("not a valid NCA: %w", err)
	}
	fmt.Printf("Valid NCA3 found. Content size: %d\n", nca.Header.ContentSize)

	outFile := inputFile + ".nsz"
	out, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	fileInfo, err := f.Stat()
	if err != nil {
		return fmt.Errorf("statting input file: %w", err)
	}

	if _, err := fs.CompressNca(f, out, fileInfo.Size(), nil, compressionLevel); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	fmt.Println("Compression complete.")
	return nil
}
