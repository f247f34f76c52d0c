package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"threatsnap/config"
	"threatsnap/internal/demo"
	inputredis "threatsnap/internal/input/redis"
	"threatsnap/internal/logger"
	"threatsnap/internal/metrics"
	"threatsnap/internal/output/snapshotjson"
	"threatsnap/internal/output/textreport"
	"threatsnap/internal/pipeline"
	"threatsnap/internal/rules"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			return configArg
		}
		log.Printf("Warning: config file not found at %s, trying default locations", configArg)
	}

	if _, err := os.Stat("threatsnap.yml"); err == nil {
		return "threatsnap.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), "threatsnap.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

type snapshotFlags struct {
	config string
	input  string
	topN   int
	format string
}

func parseSnapshotFlags(args []string) (snapshotFlags, error) {
	var f snapshotFlags
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML config file (default ./threatsnap.yml when present)")
	fs.StringVar(&f.input, "input", "", "Alert JSONL input path (overrides input.file.path)")
	fs.IntVar(&f.topN, "top", 0, "Entries per report section (overrides report.top_n)")
	fs.StringVar(&f.format, "format", "", "Report format: text or json (overrides report.format)")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func loadConfig(f snapshotFlags, getenv func(string) string) (*config.Config, string, error) {
	configPath := findConfigFile(f.config)

	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, configPath, fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = loaded
	}
	config.ApplyDefaults(cfg)
	if err := config.ApplyEnv(cfg, getenv); err != nil {
		return nil, configPath, err
	}

	if f.input != "" {
		cfg.ThreatSnap.Input.File.Path = f.input
	}
	if f.topN != 0 {
		cfg.ThreatSnap.Report.TopN = f.topN
	}
	if f.format != "" {
		cfg.ThreatSnap.Report.Format = f.format
	}

	if err := config.Validate(cfg); err != nil {
		return nil, configPath, err
	}
	return cfg, configPath, nil
}

func buildSource(cfg config.ThreatSnapConfig) (pipeline.Source, error) {
	switch cfg.Input.Mode {
	case config.InputModeRedis:
		src, err := inputredis.NewSource(inputredis.Config{
			Addr:     cfg.Input.Redis.Addr,
			Password: cfg.Input.Redis.Password,
			DB:       cfg.Input.Redis.DB,
			Key:      cfg.Input.Redis.Key,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis source: %w", err)
		}
		logger.Infof("Input mode: redis (%s, key=%s)", cfg.Input.Redis.Addr, cfg.Input.Redis.Key)
		return src, nil
	default:
		path := cfg.Input.File.Path
		if cfg.Demo.DemoEnabled() {
			written, err := demo.EnsureFile(path)
			if err != nil {
				return nil, err
			}
			if written {
				logger.Infof("Alert file %s not found; wrote demo alerts", path)
			}
		}
		logger.Infof("Input mode: file (%s)", path)
		return &pipeline.FileSource{Path: path}, nil
	}
}

func buildEngine(cfg config.RulesConfig) (rules.Engine, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	engine, stats, err := rules.NewSigmaEngine(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load sigma rules from %s: %w", cfg.Path, err)
	}
	logger.Infof("Sigma rules loaded: loaded=%d skipped_complex=%d skipped_logsource=%d skipped_invalid=%d files=%d",
		stats.Loaded, stats.SkippedComplex, stats.SkippedLogsource, stats.SkippedInvalid, stats.TotalFiles)
	if stats.Loaded == 0 {
		logger.Warnf("No compatible Sigma rules loaded; suppression is effectively disabled")
	}
	return engine, nil
}

func buildWriters(cfg config.ReportConfig, stdout io.Writer) ([]pipeline.ReportWriter, error) {
	var writers []pipeline.ReportWriter
	switch cfg.Format {
	case config.FormatJSON:
		w, err := snapshotjson.NewWriter(stdout, cfg.TopN)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	default:
		w, err := textreport.NewWriter(stdout, cfg.TopN)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}

	if strings.TrimSpace(cfg.JSON.Path) != "" {
		w, err := snapshotjson.NewFileWriter(cfg.JSON.Path, cfg.TopN)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	return writers, nil
}

func runSnapshot(ctx context.Context, args []string, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	flags, err := parseSnapshotFlags(args)
	if err != nil {
		return err
	}
	cfg, configPath, err := loadConfig(flags, os.Getenv)
	if err != nil {
		return err
	}
	c := cfg.ThreatSnap

	if err := logger.Init(c.Logging.Enabled, c.Logging.Level, c.Logging.File, c.Logging.Console); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	if configPath != "" {
		logger.Infof("Config loaded from: %s", configPath)
	}

	source, err := buildSource(c)
	if err != nil {
		return err
	}
	engine, err := buildEngine(c.Rules)
	if err != nil {
		source.Close()
		return err
	}
	writers, err := buildWriters(c.Report, stdout)
	if err != nil {
		source.Close()
		return err
	}

	var recorder *metrics.Recorder
	if c.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	snap, err := pipeline.NewSnapshot(source, engine, writers, stdout, recorder)
	if err != nil {
		source.Close()
		return err
	}
	defer func() {
		if err := snap.Close(); err != nil {
			logger.Errorf("Error closing pipeline: %v", err)
		}
	}()

	if _, err := snap.Run(ctx); err != nil {
		return err
	}

	if recorder != nil {
		if err := recorder.WriteTextfile(c.Metrics.Textfile); err != nil {
			logger.Errorf("%v", err)
		} else {
			logger.Infof("Metrics written to %s", c.Metrics.Textfile)
		}
	}
	return nil
}

func runDemo(args []string, stdout io.Writer) error {
	path := "alerts.jsonl"
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		path = args[0]
	}
	if err := demo.WriteFile(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d demo alerts to %s\n", len(demo.Records()), path)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "snapshot":
			args = args[1:]
		case "demo":
			if err := runDemo(args[1:], os.Stdout); err != nil {
				log.Fatalf("Failed to write demo alerts: %v", err)
			}
			return
		}
	}

	if err := runSnapshot(ctx, args, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Errorf("Snapshot failed: %v", err)
		log.Fatalf("Snapshot failed: %v", err)
	}
}
