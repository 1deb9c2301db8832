package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toposonics/imgextract"
	"github.com/toposonics/imgextract/utils"
	"go.uber.org/zap"
)

// extractFn is the shape shared by the file based entry points.
type extractFn func(p *imgextract.Processor, path string, width int, dims *imgextract.Dimensions) ([]byte, error)

func newExtractCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <path|url>",
		Short: "Resize an image and write its RGBA pixels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, v, args[0], (*imgextract.Processor).ExtractFromFile)
		},
	}
}

func newRidgeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "ridge <path|url>",
		Short: "Resize an image and write its single channel ridge strength map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, v, args[0], (*imgextract.Processor).ComputeRidgeStrength)
		},
	}
}

func runFile(cmd *cobra.Command, v *viper.Viper, src string, fn extractFn) error {
	s, err := newSession(cmd, v)
	if err != nil {
		return err
	}
	defer s.close()

	path, cleanup, err := s.resolveSource(cmd.Context(), src)
	if err != nil {
		return err
	}
	defer cleanup()

	s.startProgress("processing image...")
	var dims imgextract.Dimensions
	pix, err := fn(s.proc, path, s.cfg.Width, &dims)
	s.stopProgress(err)
	if err != nil {
		return err
	}
	return s.write(frameOf(pix, dims), s.cfg.Out)
}

func newTextureCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "texture <handle>",
		Short: "Extract the pixels of a platform texture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid texture handle %q: %w", args[0], err)
			}
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			defer s.close()

			var dims imgextract.Dimensions
			pix, err := s.proc.ExtractFromTexture(imgextract.TextureHandle(h), s.cfg.Width, &dims)
			if errors.Is(err, imgextract.ErrTextureUnsupported) {
				utils.Fprintln(s.stderr, "⚡ IMGEXTRACT", "texture extraction is not supported on this platform", utils.DefaultMessage)
				return nil
			}
			if err != nil {
				return err
			}
			return s.write(frameOf(pix, dims), s.cfg.Out)
		},
	}
}

func newProcessCmd(v *viper.Viper) *cobra.Command {
	var withRidge bool

	cmd := &cobra.Command{
		Use:   "process <path|url>",
		Short: "Run a full processing request and print a summary of every frame",
		Long: `Runs a complete request: resized RGBA pixels and, with --ridge, the ridge
strength map of the same image. With --out the RGBA frame is written to the
destination and the ridge map next to it with a ".ridge" suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, v)
			if err != nil {
				return err
			}
			defer s.close()

			path, cleanup, err := s.resolveSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			s.startProgress("processing image...")
			res, err := s.proc.Process(cmd.Context(), imgextract.Request{
				URI:                  path,
				TargetWidth:          s.cfg.Width,
				IncludeRidgeStrength: withRidge,
			})
			s.stopProgress(err)
			if err != nil {
				return err
			}

			s.summary("pixels", &res.Frame)
			if res.Ridge != nil {
				s.summary("ridge", res.Ridge)
			}
			if s.cfg.Out == pipeName {
				return nil
			}
			if err := s.write(&res.Frame, s.cfg.Out); err != nil {
				return err
			}
			if res.Ridge != nil {
				return s.write(res.Ridge, ridgePath(s.cfg.Out))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withRidge, "ridge", false, "include the ridge strength map")
	return cmd
}

func frameOf(pix []byte, dims imgextract.Dimensions) *imgextract.Frame {
	f := &imgextract.Frame{Pixels: pix, Width: dims[0], Height: dims[1]}
	if n := dims[0] * dims[1]; n > 0 {
		f.Channels = len(pix) / n
	}
	return f
}

func ridgePath(out string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + ".ridge" + ext
}

// write encodes the frame into the destination.
func (s *session) write(f *imgextract.Frame, out string) error {
	layout, err := imgextract.LayoutFromChannels(f.Channels)
	if err != nil {
		return err
	}
	buf := &imgextract.Buffer{Width: f.Width, Height: f.Height, Layout: layout, Pix: f.Pixels}

	format := s.cfg.Format
	if out != s.cfg.Out {
		format = imgextract.FormatFromPath(out)
	}
	w, err := s.openOutput(out)
	if err != nil {
		return err
	}
	if err := imgextract.Encode(w, buf, format); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	s.log.Debug("frame written",
		zap.String("out", out),
		zap.String("format", format),
		zap.Int("width", f.Width),
		zap.Int("height", f.Height),
	)
	if s.cfg.Digest {
		fmt.Fprintf(s.stderr, "xxh64 %016x  %s\n", xxhash.Sum64(f.Pixels), out)
	}
	if out != pipeName {
		fmt.Fprintf(s.stderr, "The frame has been saved as: %s (%s)\n",
			utils.DecorateText(filepath.Base(out), utils.SuccessMessage),
			utils.FormatTime(time.Since(s.start)),
		)
	}
	return nil
}

// summary prints one line describing a frame.
func (s *session) summary(name string, f *imgextract.Frame) {
	line := fmt.Sprintf("%-6s %dx%d %dch %s", name, f.Width, f.Height, f.Channels, utils.FormatBytes(len(f.Pixels)))
	if s.cfg.Digest {
		line += fmt.Sprintf(" xxh64=%016x", xxhash.Sum64(f.Pixels))
	}
	fmt.Fprintln(s.stdout, line)
}
