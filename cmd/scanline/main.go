// Package main provides the CLI entry point for scanline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/scanline/pkg/adapters/boxlocator"
	"github.com/user/scanline/pkg/adapters/browsersource"
	"github.com/user/scanline/pkg/adapters/imagesource"
	"github.com/user/scanline/pkg/adapters/logger"
	"github.com/user/scanline/pkg/adapters/osfilesystem"
	"github.com/user/scanline/pkg/adapters/overlaysink"
	"github.com/user/scanline/pkg/adapters/scanlinedecoder"
	"github.com/user/scanline/pkg/adapters/tickerclock"
	"github.com/user/scanline/pkg/config"
	"github.com/user/scanline/pkg/ports"
	"github.com/user/scanline/pkg/scan"
	"github.com/user/scanline/pkg/scanner"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:  "scanline",
		Usage: "Real-time barcode detection over live and static frame sources",
		Commands: []*cli.Command{
			watchCommand(),
			decodeCommand(),
			versionCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"C"}, Usage: "YAML configuration file"},
		&cli.StringSliceFlag{Name: "readers", Aliases: []string{"r"}, Usage: "Enabled symbology formats"},
		&cli.StringFlag{Name: "patch-size", Usage: "Locator patch size (x-small..x-large)"},
		&cli.BoolFlag{Name: "no-locate", Usage: "Disable locating; decode the full frame"},
		&cli.BoolFlag{Name: "no-half-sample", Usage: "Process at full source resolution"},
		&cli.StringFlag{Name: "overlay-dir", Usage: "Write annotated PNGs for detections into this directory"},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: "Log level (debug, info, warn, error)"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: "Suppress all log output"},
	}
}

func watchCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: -1, Usage: "Decode worker count (0 decodes in-process)"},
		&cli.Float64Flag{Name: "frequency", Aliases: []string{"f"}, Value: -1, Usage: "Target scans per second (0 scans every frame)"},
		&cli.IntFlag{Name: "width", Usage: "Requested capture width"},
		&cli.IntFlag{Name: "height", Usage: "Requested capture height"},
		&cli.StringFlag{Name: "chrome-path", Usage: "Path to Chrome executable (falls back to CHROME_PATH env)"},
		&cli.BoolFlag{Name: "no-headless", Usage: "Run the capture browser visibly"},
	)
	return &cli.Command{
		Name:      "watch",
		Usage:     "Continuously scan a live source for barcodes",
		ArgsUsage: "URL",
		Flags:     flags,
		Action:    runWatch,
	}
}

func decodeCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.IntFlag{Name: "size", Usage: "Longest-edge cap for the decoded image"},
		&cli.BoolFlag{Name: "json", Usage: "Print the full result as JSON"},
	)
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a single image file",
		ArgsUsage: "IMAGE",
		Flags:     flags,
		Action:    runDecode,
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("scanline %s\n", version)
			return nil
		},
	}
}

func runWatch(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("watch: exactly one URL argument required")
	}
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	cfg.InputStream.Type = config.TypeLive
	cfg.InputStream.Target = c.Args().First()
	if w := c.Int("workers"); w >= 0 {
		cfg.NumOfWorkers = w
	}
	if f := c.Float64("frequency"); f >= 0 {
		cfg.Frequency = f
	}
	if w := c.Int("width"); w > 0 {
		cfg.InputStream.Constraints.Width = w
	}
	if h := c.Int("height"); h > 0 {
		cfg.InputStream.Constraints.Height = h
	}

	log := buildLogger(c)
	s := buildScanner(c, cfg, log)

	cancelDetected := s.OnDetected(func(r *scan.Result) {
		r.WalkLeaves(func(leaf *scan.Result) {
			if leaf.CodeResult != nil {
				log.Info(l10n.F("Detected %s code: %s", leaf.CodeResult.Format, leaf.CodeResult.Code))
			}
		})
	})
	defer cancelDetected()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info(l10n.F("Watching %s for barcodes...", cfg.InputStream.Target))
	if err := s.Init(ctx, cfg, nil); err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		s.Stop()
		return err
	}

	<-sigCh
	log.Warn(l10n.T("Interrupted, shutting down..."))
	s.Stop()
	return nil
}

func runDecode(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("decode: exactly one image argument required")
	}
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	single := config.SingleShotDefaults()
	single.Locate = cfg.Locate
	single.Locator.PatchSize = cfg.Locator.PatchSize
	single.Decoder = cfg.Decoder
	single.InputStream.Target = c.Args().First()
	if size := c.Int("size"); size > 0 {
		single.InputStream.Size = size
	}

	log := buildLogger(c)
	s := buildScanner(c, single, log)

	log.Info(l10n.F("Decoding %s...", single.InputStream.Target))
	result, err := s.DecodeSingle(context.Background(), single)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	found := false
	result.WalkLeaves(func(leaf *scan.Result) {
		if leaf.CodeResult != nil {
			found = true
			fmt.Printf("%s\t%s\n", leaf.CodeResult.Format, leaf.CodeResult.Code)
		}
	})
	if !found {
		log.Warn(l10n.T("No barcode found"))
		return cli.Exit("", 1)
	}
	return nil
}

func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if readers := c.StringSlice("readers"); len(readers) > 0 {
		cfg.Decoder.Readers = readers
	}
	if ps := c.String("patch-size"); ps != "" {
		cfg.Locator.PatchSize = ps
	}
	if c.Bool("no-locate") {
		cfg.Locate = false
	}
	if c.Bool("no-half-sample") {
		cfg.Locator.HalfSample = false
	}
	return cfg, nil
}

func buildLogger(c *cli.Context) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
}

func buildScanner(c *cli.Context, cfg config.Config, log ports.Logger) *scanner.Scanner {
	fs := osfilesystem.New()
	s := scanner.New(scanner.Deps{
		NewSource: func(cfg config.Config) (ports.Source, error) {
			switch cfg.InputStream.Type {
			case config.TypeImage:
				return imagesource.New(fs, cfg.InputStream.Target, cfg.InputStream.Size), nil
			case config.TypeLive:
				return browsersource.New(cfg.InputStream.Target, browsersource.Options{
					Headless:   !c.Bool("no-headless"),
					ChromePath: c.String("chrome-path"),
					Width:      cfg.InputStream.Constraints.Width,
					Height:     cfg.InputStream.Constraints.Height,
				}), nil
			default:
				return nil, fmt.Errorf("unknown input stream type %q", cfg.InputStream.Type)
			}
		},
		Locator:    boxlocator.New(),
		NewDecoder: func() ports.Decoder { return scanlinedecoder.New(nil) },
		NewClock:   func() ports.FrameClock { return tickerclock.New(tickerclock.DefaultInterval) },
		Logger:     log,
	})
	if dir := c.String("overlay-dir"); dir != "" {
		s.RegisterResultSink(overlaysink.New(fs, dir, log))
	}
	return s
}
