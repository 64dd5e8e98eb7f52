package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"contactsheet/internal/app"
	"contactsheet/internal/config"
	"contactsheet/internal/logger"
	"contactsheet/internal/service/session"
	"contactsheet/internal/service/sheet"
	"contactsheet/internal/tensor"
)

type renderOptions struct {
	folder        string
	rows          int
	thumbnailSize int
	selected      int
	out           string
	verbose       bool
}

func newRenderCmd(cfg *config.Config) *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:          "render",
		Short:        "Render the contact sheet and selected image of a folder as PNG files",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logWriter := io.Discard
			if opts.verbose {
				logWriter = cmd.ErrOrStderr()
			}
			return render(cfg, logger.NewWriter(logWriter), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.folder, "folder", "f", cfg.DefaultFolder, "Folder to scan for images")
	cmd.Flags().IntVarP(&opts.rows, "rows", "r", cfg.Rows, "Rows of 8 thumbnails (1-8)")
	cmd.Flags().IntVarP(&opts.thumbnailSize, "size", "s", cfg.ThumbnailSize, "Thumbnail edge in pixels (64-512)")
	cmd.Flags().IntVarP(&opts.selected, "selected", "n", 1, "1-based index of the image to load")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "Directory receiving sheet.png, image.png and mask.png")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	return cmd
}

// render runs one view and writes its outputs to opts.out.
func render(cfg *config.Config, appLogger *logger.Logger, opts renderOptions, stdout io.Writer) error {
	scan, compositor, selector, err := app.Components(cfg, appLogger)
	if err != nil {
		return err
	}
	view := session.New(scan, compositor, selector).GetView(opts.folder, nil, opts.selected, opts.thumbnailSize, opts.rows)

	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputs := []struct {
		name string
		img  *tensor.Image
	}{
		{"sheet.png", view.Sheet},
		{"image.png", view.Image},
		{"mask.png", view.Mask},
	}
	for _, o := range outputs {
		data, err := sheet.EncodePNG(o.img)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", o.name, err)
		}
		if err := os.WriteFile(filepath.Join(opts.out, o.name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.name, err)
		}
	}

	fmt.Fprintf(stdout, "selected: %s\n", view.Filename)
	for i, f := range view.Files {
		fmt.Fprintf(stdout, "%3d  %s  %s\n", i+1, f.ModTime.Format("2006-01-02 15:04:05"), f.Name())
	}
	return nil
}
