package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nconklindev/saidan/internal/config"
	"github.com/nconklindev/saidan/internal/cutter"
	"github.com/nconklindev/saidan/internal/engine"
	"github.com/nconklindev/saidan/internal/export"
	"github.com/nconklindev/saidan/internal/loader"
	"github.com/nconklindev/saidan/internal/logging"
	"github.com/nconklindev/saidan/internal/settings"
	"github.com/nconklindev/saidan/internal/types"
	"github.com/nconklindev/saidan/internal/ui"
)

type rootOptions struct {
	verbose  bool
	logLevel string
	cfg      *config.Config
}

type cutOptions struct {
	rows   int
	cols   []int
	invert bool
	split  int
	header bool
	format string
	out    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "saidan [files...]",
		Short: "Cut rows and columns out of CSV and XLSX files, then split them",
		Long: `saidan trims tabular files and splits them into smaller files.

Run without arguments to pick a file interactively. Paths given on the
command line are loaded together as one batch sharing the same cuts.`,
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(opts, args)
		},
	}
	cmd.SetVersionTemplate("saidan {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides SAIDAN_LOG_LEVEL)")

	cmd.AddCommand(newCutCmd(opts), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "saidan %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		},
	}
}

func newCutCmd(root *rootOptions) *cobra.Command {
	opts := &cutOptions{}

	cmd := &cobra.Command{
		Use:   "cut file...",
		Short: "Apply cuts and a split without the interface",
		Long: `Applies the same cuts the interface does, in order: the row cut, then each
column cut, then the split. Every --col line is relative to the columns left by
the previous cut; line i is the boundary right of column i (0-based).

Example:
  saidan cut report.csv --rows 2 --col 3 --split 500 --header`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if !cmd.Flags().Changed("format") {
				opts.format = cfg.Export.Format
			}
			if !cmd.Flags().Changed("out") {
				opts.out = cfg.Export.Dir
			}
			splitSet := cmd.Flags().Changed("split")

			logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Verbose: root.verbose})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			result, err := runCut(cmd.Context(), cfg, logger, opts, splitSet, args)
			if err != nil {
				return err
			}

			kind := "file"
			if result.Archived {
				kind = "archive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s %s (%d files, %d rows)\n",
				kind, result.OutputFile, len(result.Files), result.RowsWritten)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.rows, "rows", 0, "remove this many rows from the top")
	cmd.Flags().IntSliceVar(&opts.cols, "col", nil, "cut at this column line (repeatable, applied in order)")
	cmd.Flags().BoolVar(&opts.invert, "invert", false, "keep the right side of column cuts instead of the left")
	cmd.Flags().IntVar(&opts.split, "split", 0, "split into files of this many rows")
	cmd.Flags().BoolVar(&opts.header, "header", false, "repeat the header row in every split file")
	cmd.Flags().StringVar(&opts.format, "format", "csv", "output format: csv or xlsx (overrides SAIDAN_FORMAT)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory (overrides SAIDAN_OUTPUT_DIR)")

	return cmd
}

func runCut(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts *cutOptions, splitSet bool, args []string) (*types.ExportResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}
	paths, err := tabularPaths(args)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Load.Timeout)
	files, err := loader.LoadAll(loadCtx, paths)
	cancel()
	if err != nil {
		return nil, err
	}

	c := cutter.New(logger)
	if err := c.Load(files); err != nil {
		return nil, err
	}
	c.Selection().SetInverted(opts.invert)

	if opts.rows < 0 {
		return nil, fmt.Errorf("--rows %d: %w", opts.rows, engine.ErrInvalidRowCount)
	}
	if opts.rows > 0 {
		if _, err := c.ToggleRowLine(opts.rows - 1); err != nil {
			return nil, fmt.Errorf("--rows %d: %w", opts.rows, err)
		}
		if err := c.Commit(cutter.SplitRequest{}); err != nil {
			return nil, err
		}
	}

	for _, line := range opts.cols {
		if _, err := c.ToggleColumnLine(line); err != nil {
			return nil, fmt.Errorf("--col %d: %w", line, err)
		}
		if err := c.Commit(cutter.SplitRequest{}); err != nil {
			return nil, err
		}
	}

	if splitSet {
		req := cutter.SplitRequest{RowsPerFile: cutter.RowsPerFile(opts.split), IncludeHeader: opts.header}
		if err := c.Commit(req); err != nil {
			return nil, fmt.Errorf("--split %d: %w", opts.split, err)
		}
	}

	return export.Export(ctx, opts.out, c.Outputs(), format, time.Now(), nil)
}

func tabularPaths(args []string) ([]string, error) {
	paths, rejected := loader.FilterTabular(args)
	if len(rejected) > 0 {
		return nil, fmt.Errorf("%w: %s", loader.ErrUnsupportedFile, strings.Join(rejected, ", "))
	}
	return paths, nil
}

func runInteractive(opts *rootOptions, args []string) error {
	cfg := opts.cfg

	paths, err := tabularPaths(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Verbose: opts.verbose, File: cfg.LogPath()})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	settingsPath := cfg.SettingsPath()
	prefs := settings.Load(settings.NewFileStore(settingsPath), logger)

	var watcher *settings.Watcher
	if cfg.Settings.Watch {
		watcher, err = settings.Watch(settingsPath, logger)
		if err != nil {
			logger.Warn("settings watch disabled", zap.String("path", settingsPath), zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	logger.Info("starting", zap.String("version", version), zap.Int("files", len(paths)))

	model := ui.New(ui.Options{
		Config:   cfg,
		Settings: prefs,
		Watcher:  watcher,
		Logger:   logger,
		Paths:    paths,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
