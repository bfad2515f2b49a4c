package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	v1 "propostas/internal/api/v1"
	"propostas/internal/config"
	"propostas/internal/importer"
	"propostas/internal/logger"
	"propostas/internal/pipeline"
	"propostas/internal/server"
	"propostas/internal/store"
	"propostas/internal/tableio"
	"propostas/internal/util"
	"propostas/internal/workspace"
)

type options struct {
	configPath string
	in         string
	out        string
	format     string
	temp       bool
	open       bool
	list       bool
	clear      bool
	save       bool
	serve      bool
	dev        bool
	port       int
	dataDir    string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("propostas", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "config.toml path (default: beside the executable)")
	fs.StringVar(&o.in, "in", "", "input table (default: the single file in the inbox folder)")
	fs.StringVar(&o.out, "out", "", "output file (default: output_name in the data directory)")
	fs.StringVar(&o.format, "format", "", "output format: xlsx or csv (default: from -out, else xlsx)")
	fs.BoolVar(&o.temp, "temp", false, "write a timestamped temporary output instead of the main one")
	fs.BoolVar(&o.open, "open", false, "open the output when done")
	fs.BoolVar(&o.list, "list", false, "list processed input files and exit")
	fs.BoolVar(&o.clear, "clear", false, "delete processed input files and exit")
	fs.BoolVar(&o.save, "save", false, "write the effective configuration (with -port/-dataDir/-dev applied) to config.toml and exit")
	fs.BoolVar(&o.serve, "serve", false, "run the HTTP API")
	fs.BoolVar(&o.dev, "dev", false, "development mode (verbose gin)")
	fs.IntVar(&o.port, "port", 0, "HTTP port (used only when config.toml sets none)")
	fs.StringVar(&o.dataDir, "dataDir", "", "data directory (overrides config)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch strings.ToLower(o.format) {
	case "", "xlsx", "csv":
		o.format = strings.ToLower(o.format)
	default:
		return nil, fmt.Errorf("unknown -format %q", o.format)
	}
	return o, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, info, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config not loaded, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	if opts.port > 0 && !info.PortSpecified {
		cfg.Server.Port = opts.port
	}
	if opts.dev {
		cfg.Server.DevMode = true
	}
	if opts.dataDir != "" {
		cfg.Data.DataDir = opts.dataDir
	}

	if opts.save {
		return saveConfig(opts.configPath, cfg, stdout, stderr)
	}

	log := logger.MustNew(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ws, err := workspace.FromConfig(cfg)
	if err != nil {
		log.Error("workspace unavailable", zap.Error(err))
		return 1
	}
	log.Debug("workspace ready", zap.String("data_dir", ws.Root), zap.Bool("config_file", info.FileFound))

	switch {
	case opts.list:
		return listProcessed(ws, stdout, log)
	case opts.clear:
		return clearProcessed(ws, stdout, log)
	}

	st := openHistory(cfg, log)
	if st != nil {
		defer st.Close()
	}

	proc := pipeline.NewProcessor(cfg.Pipeline, log)
	coord := importer.NewCoordinator(proc, st, tableio.Options{Delimiter: cfg.CSV.Delimiter}, log)

	if opts.serve {
		return serve(cfg, v1.NewHandler(coord, st, ws, log), log)
	}
	return processOnce(opts, cfg, ws, coord, stdout, log)
}

func loadConfig(path string) (*config.AppConfig, config.LoadConfigInfo, error) {
	if path != "" {
		return config.LoadConfigFrom(path)
	}
	return config.LoadConfigWithInfo()
}

func saveConfig(path string, cfg *config.AppConfig, stdout, stderr io.Writer) int {
	var err error
	if path != "" {
		err = config.SaveConfigTo(path, cfg)
	} else {
		path, err = config.SaveConfig(cfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "config not saved: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "configuration written to %s\n", path)
	return 0
}

// openHistory opens the run history; failures only disable it.
func openHistory(cfg *config.AppConfig, log *zap.Logger) *store.Store {
	if cfg.Data.HistoryDB == "" {
		return nil
	}
	st, err := store.New(config.GetDataPath(cfg, "", cfg.Data.HistoryDB))
	if err != nil {
		log.Warn("run history disabled", zap.Error(err))
		return nil
	}
	return st
}

func processOnce(opts *options, cfg *config.AppConfig, ws *workspace.Workspace, coord *importer.Coordinator, stdout io.Writer, log *zap.Logger) int {
	input := opts.in
	fromInbox := input == ""
	if fromInbox {
		found, err := ws.FindInput()
		if err != nil {
			if errors.Is(err, workspace.ErrNoInput) {
				log.Error("no input file", zap.String("inbox", ws.Inbox))
			} else {
				log.Error("cannot pick input", zap.Error(err))
			}
			return 1
		}
		input = found
	}

	output := outputPath(opts, ws, time.Now())
	if opts.temp {
		if removed, err := ws.CleanTempOutputs(); err != nil {
			log.Warn("old temporary outputs not removed", zap.Error(err))
		} else if len(removed) > 0 {
			log.Info("removed old temporary outputs", zap.Strings("files", removed))
		}
	} else if cfg.Data.AutoBackup {
		if backup, err := ws.BackupOutput(output); err != nil {
			log.Error("output is locked or unwritable, retry with -temp", zap.Error(err))
			return 1
		} else if backup != "" {
			log.Info("previous output backed up", zap.String("path", backup))
		}
	}

	var report *importer.Report
	for event := range coord.Import(importer.ImportOptions{InputPath: input, OutputPath: output, Source: "cli"}) {
		switch event.Type {
		case "done":
			report, _ = event.Data.(*importer.Report)
		case "error":
			log.Error("processing failed", zap.String("reason", event.Message))
			return 1
		default:
			fmt.Fprintf(stdout, "[%s] %s\n", event.Type, event.Message)
		}
	}
	if report == nil {
		return 1
	}

	fmt.Fprintf(stdout, "%d rows in, %d rows out (%d duplicates dropped) -> %s\n",
		report.SourceRows, report.OutputRows, report.DuplicatesDropped, report.OutputPath)
	if report.Fallback {
		fmt.Fprintln(stdout, "no records could be extracted; the output is a copy of the input table")
	}

	if fromInbox {
		if moved, err := ws.MarkProcessed(input); err != nil {
			log.Warn("input left in inbox", zap.Error(err))
		} else {
			log.Info("input moved to processed", zap.String("path", moved))
		}
	}

	if opts.open {
		if err := util.OpenFile(report.OutputPath); err != nil {
			log.Warn("cannot open output", zap.Error(err))
		}
	}
	return 0
}

// outputPath picks the output file and gives it the requested extension.
func outputPath(opts *options, ws *workspace.Workspace, now time.Time) string {
	path := opts.out
	switch {
	case path != "":
	case opts.temp:
		path = ws.TempOutputPath(now)
	default:
		path = ws.OutputPath()
	}
	if opts.format == "" {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + opts.format
}

func listProcessed(ws *workspace.Workspace, stdout io.Writer, log *zap.Logger) int {
	files, err := ws.ListProcessed()
	if err != nil {
		log.Error("cannot list processed files", zap.Error(err))
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintln(stdout, "no processed files")
		return 0
	}
	for _, f := range files {
		fmt.Fprintf(stdout, "%s\t%d\t%s\n", f.ModTime.Format("2006-01-02 15:04"), f.Size, f.Name)
	}
	return 0
}

func clearProcessed(ws *workspace.Workspace, stdout io.Writer, log *zap.Logger) int {
	n, err := ws.ClearProcessed()
	if err != nil {
		log.Error("cannot clear processed files", zap.Int("removed", n), zap.Error(err))
		return 1
	}
	fmt.Fprintf(stdout, "%d processed files removed\n", n)
	return 0
}

func serve(cfg *config.AppConfig, api *v1.Handler, log *zap.Logger) int {
	srv := server.NewServer(cfg, api, log)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Run(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil {
			log.Error("http server stopped", zap.Error(err))
			return 1
		}
		return 0
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
		return 1
	}
	return 0
}
