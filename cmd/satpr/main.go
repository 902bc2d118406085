package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"satpr/internal/config"
	"satpr/internal/debug/timing"
	"satpr/internal/logger"
	"satpr/internal/pipeline"
	"satpr/internal/services"
	"satpr/internal/shutdown"
)

const (
	AppName    = "satpr"
	AppVersion = "1.0.0"
)

type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML configuration file")
	var training, exams listFlag
	fs.Var(&training, "train", "training class image (repeatable or comma separated)")
	fs.Var(&exams, "exam", "exam class image (repeatable or comma separated)")
	delta := fs.Int("delta", 0, "binarization tolerance 0..255")
	base := fs.Int("base", 0, "index of the base class the corridor is built from")
	criterion := fs.String("criterion", "", "optimization criterion: shannon or kullback")
	optimize := fs.Bool("optimize", false, "sweep every delta and apply the best one")
	workers := fs.Int("workers", 0, "optimizer workers")
	meanMode := fs.String("mean-mode", "", "corridor mean: realizations or legacy-attributes")
	criteriaMode := fs.String("criteria-mode", "", "criteria counting: pooled or closest")
	output := fs.String("out", "", "directory to write binary matrices and reference vectors to")
	logLevel := fs.String("log-level", "", "debug, info, warn, error or disabled")
	logFormat := fs.String("log-format", "", "console or json")
	jsonOut := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "delta":
			cfg.Delta = *delta
		case "base":
			cfg.BaseClass = *base
		case "criterion":
			cfg.Criterion = *criterion
		case "optimize":
			cfg.Optimize = *optimize
		case "workers":
			cfg.Workers = *workers
		case "mean-mode":
			cfg.MeanMode = *meanMode
		case "criteria-mode":
			cfg.CriteriaMode = *criteriaMode
		case "out":
			cfg.Output = *output
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		}
	})
	cfg.Training = append(cfg.Training, training...)
	cfg.Exam = append(cfg.Exam, exams...)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Training) == 0 {
		fs.Usage()
		return errors.New("at least one -train image is required")
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	appLogger := logger.New(cfg.LogFormat, level)
	tracker := timing.NewTracker(appLogger)

	appLogger.Info("Main", "starting", map[string]interface{}{
		"version":   AppVersion,
		"training":  len(cfg.Training),
		"exam":      len(cfg.Exam),
		"criterion": cfg.Criterion,
	})

	service := services.NewClassificationService(services.Settings{
		Delta:     byte(cfg.Delta),
		BaseClass: 0,
		Criterion: cfg.Kind(),
		Options:   cfg.PipelineOptions(),
		Workers:   cfg.Workers,
	}, appLogger, tracker)

	shutdownManager := shutdown.NewManager(appLogger, shutdown.DefaultTimeout)
	shutdownManager.Register(service)
	shutdownManager.Listen()
	defer shutdownManager.Shutdown()

	loader := pipeline.NewClassLoader(appLogger, tracker)
	for _, path := range cfg.Training {
		class, err := loader.LoadFile(path)
		if err != nil {
			return err
		}
		if _, err := service.AddTrainingClass(class); err != nil {
			return fmt.Errorf("training class %s: %w", path, err)
		}
	}
	for _, path := range cfg.Exam {
		class, err := loader.LoadFile(path)
		if err != nil {
			return err
		}
		if _, err := service.AddExamClass(class); err != nil {
			return fmt.Errorf("exam class %s: %w", path, err)
		}
	}

	if cfg.BaseClass != 0 {
		if err := service.SetBaseClass(cfg.BaseClass); err != nil {
			return err
		}
	}

	if cfg.Optimize {
		if _, err := service.Optimize(shutdownManager.Context()); err != nil {
			select {
			case <-shutdownManager.Done():
				return fmt.Errorf("optimize interrupted: %w", err)
			default:
				return fmt.Errorf("optimize: %w", err)
			}
		}
	}

	state := service.Snapshot()
	if cfg.Output != "" {
		saver := pipeline.NewStateSaver(appLogger, tracker)
		if err := saver.SaveState(cfg.Output, state); err != nil {
			return err
		}
	}

	report := buildReport(service)
	if *jsonOut {
		return writeJSON(os.Stdout, report)
	}
	writeText(os.Stdout, report)
	return nil
}
