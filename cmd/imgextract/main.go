package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toposonics/imgextract"
	"github.com/toposonics/imgextract/utils"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const HelpBanner = `
┬┌┬┐┌─┐┌─┐─┐ ┬┌┬┐┬─┐┌─┐┌─┐┌┬┐
││││├┤ │ ┬├┤ ┌┴┬┘ │ ├┬┘├─┤│   │
┴┴ ┴└─┘└─┘└─┘┴ └─ ┴ ┴└─┴ ┴└─┘ ┴

Image pixel extraction and ridge strength maps.
    Version: %s
`

// pipeName is the file name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version = "dev"

// config holds the resolved command line configuration.
type config struct {
	Width   int
	Filter  imgextract.ResampleFilter
	Out     string
	Format  string
	Digest  bool
	Verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n\t%s\n",
			utils.DecorateText("Error extracting the image:", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "imgextract",
		Short:         "Extract resized RGBA pixels and ridge strength maps from images",
		Long:          fmt.Sprintf(HelpBanner, Version),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.IntP("width", "w", imgextract.DefaultTargetWidth, "target width, the height follows the aspect ratio")
	flags.String("filter", imgextract.Area.String(), "resample filter: area, lanczos, linear, box, nearest")
	flags.StringP("out", "o", pipeName, "destination file, - for stdout")
	flags.String("format", "", "output format: raw, png, jpg, bmp (default from the destination extension)")
	flags.Bool("digest", false, "print the xxhash64 digest of the packed pixels")
	flags.BoolP("verbose", "v", false, "verbose output")

	for _, name := range []string{"width", "filter", "out", "format", "digest", "verbose"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	v.SetEnvPrefix("IMGEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newExtractCmd(v),
		newRidgeCmd(v),
		newTextureCmd(v),
		newProcessCmd(v),
	)
	return root
}

// loadConfig resolves flags, environment and config file values.
func loadConfig(v *viper.Viper) (*config, error) {
	filter, err := imgextract.ParseFilter(v.GetString("filter"))
	if err != nil {
		return nil, err
	}
	cfg := &config{
		Width:   v.GetInt("width"),
		Filter:  filter,
		Out:     v.GetString("out"),
		Format:  v.GetString("format"),
		Digest:  v.GetBool("digest"),
		Verbose: v.GetBool("verbose"),
	}
	if cfg.Out == "" {
		cfg.Out = pipeName
	}
	if cfg.Format == "" {
		cfg.Format = imgextract.FormatFromPath(cfg.Out)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

// session bundles what every subcommand needs for one run.
type session struct {
	cfg     *config
	log     *zap.Logger
	proc    *imgextract.Processor
	spinner *utils.Spinner
	unwatch func() bool
	stderr  io.Writer
	stdout  io.Writer
	start   time.Time
}

func newSession(cmd *cobra.Command, v *viper.Viper) (*session, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	s := &session{
		cfg:    cfg,
		log:    logger,
		proc:   imgextract.NewProcessor(imgextract.WithFilter(cfg.Filter), imgextract.WithLogger(logger)),
		stderr: cmd.ErrOrStderr(),
		stdout: cmd.OutOrStdout(),
		start:  time.Now(),
	}
	if f, ok := s.stderr.(*os.File); ok && !cfg.Verbose && term.IsTerminal(int(f.Fd())) {
		s.spinner = utils.NewSpinnerTo(f, progressLine("processing image..."), 80*time.Millisecond, true)
		// An interrupt must not leave the terminal without a cursor.
		s.unwatch = context.AfterFunc(cmd.Context(), s.spinner.RestoreCursor)
	}
	return s, nil
}

func progressLine(stage string) string {
	return fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ IMGEXTRACT", utils.StatusMessage),
		utils.DecorateText("⇢ "+stage, utils.DefaultMessage),
	)
}

// startProgress shows the spinner with the given stage. A running spinner
// only gets its message replaced.
func (s *session) startProgress(stage string) {
	if s.spinner != nil {
		s.spinner.SetMessage(progressLine(stage))
		s.spinner.Start()
	}
}

func (s *session) stopProgress(err error) {
	if s.spinner == nil {
		return
	}
	if err != nil {
		s.spinner.StopMsg = fmt.Sprintf("%s %s\n",
			utils.DecorateText("⚡ IMGEXTRACT", utils.StatusMessage),
			utils.DecorateText("processing failed ✘", utils.ErrorMessage),
		)
	} else {
		s.spinner.StopMsg = fmt.Sprintf("%s %s\n",
			utils.DecorateText("⚡ IMGEXTRACT", utils.StatusMessage),
			utils.DecorateText("done ✔", utils.SuccessMessage),
		)
	}
	s.spinner.Stop()
}

func (s *session) close() {
	if s.spinner != nil {
		s.spinner.Stop()
		s.unwatch()
	}
	_ = s.log.Sync()
}

// resolveSource turns a local path, file URL or remote URL into a local path.
// The returned cleanup function removes downloaded files.
func (s *session) resolveSource(ctx context.Context, src string) (string, func(), error) {
	noop := func() {}
	if !utils.IsValidUrl(src) {
		path, err := imgextract.ResolvePath(src)
		return path, noop, err
	}
	s.log.Debug("downloading source", zap.String("url", src))
	s.startProgress("downloading image...")
	f, err := utils.DownloadImage(ctx, src)
	if err != nil {
		return "", noop, err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		s.log.Warn("could not close the downloaded file", zap.Error(err))
	}
	return name, func() { os.Remove(name) }, nil
}

// openOutput converts the destination path into a writer.
func (s *session) openOutput(out string) (io.WriteCloser, error) {
	if out == pipeName {
		if f, ok := s.stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return nopCloser{s.stdout}, nil
	}
	f, err := os.Create(out)
	if err != nil {
		return nil, fmt.Errorf("unable to create the destination file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
