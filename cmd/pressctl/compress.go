package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go-image-press/pkg/uploader"
)

func compressCmd() *cobra.Command {
	var server string
	var out string

	cmd := &cobra.Command{
		Use:   "compress <file>",
		Short: "Upload an image and save the recompressed WebP next to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			client := uploader.New(
				strings.TrimRight(server, "/")+"/api/compress",
				uploader.WithListener(renderState),
			)

			final := client.Upload(cmd.Context(), filepath.Base(path), f, info.Size())
			fmt.Println()

			if final.Phase != uploader.PhaseDone {
				return fmt.Errorf("upload failed: %s", final.Message)
			}

			outcome := final.Outcome
			if out == "" {
				out = strings.TrimSuffix(path, filepath.Ext(path)) + ".webp"
			}
			if err := os.WriteFile(out, outcome.Handle.Bytes(), 0o644); err != nil {
				return err
			}

			fmt.Printf("%s -> %s (%s -> %s, ratio %d)\n",
				path, out,
				uploader.FormatBytes(outcome.OriginalSize),
				uploader.FormatBytes(outcome.CompressedSize),
				outcome.SavedRatio(),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "compression server base URL")
	cmd.Flags().StringVar(&out, "out", "", "output path (defaults to <file>.webp)")
	return cmd
}

func renderState(s uploader.State) {
	switch s.Phase {
	case uploader.PhaseUploading:
		fmt.Printf("\ruploading %3d%%", s.Percent)
	case uploader.PhaseProcessing:
		fmt.Printf("\rprocessing...  ")
	case uploader.PhaseFailed:
		fmt.Printf("\rfailed         ")
	}
}
