// Command ecosysx runs the agent ecosystem simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/engine"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config overlay (defaults apply when empty)")
		seed       = flag.Int64("seed", 0, "override the config seed (0 keeps the config value)")
		steps      = flag.Int("steps", 0, "run this many ticks and exit (0 runs until interrupted)")
		speed      = flag.Float64("speed", 1.0, "tick speed multiplier for continuous runs")
		outDir     = flag.String("out", "", "directory for windows.csv, contacts.csv, and report.json")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	slog.Info("ecosysx starting",
		"seed", cfg.Simulation.Seed,
		"world_size", cfg.Simulation.WorldSize,
		"population", cfg.Simulation.InitialPopulation,
		"causal_fraction", cfg.Simulation.CausalFraction,
	)

	eng := engine.New(cfg, logger)
	defer eng.Close()

	go consumeEvents(eng)

	if *steps > 0 {
		eng.StepN(*steps)
	} else {
		eng.SetSpeed(*speed)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			slog.Info("shutting down")
			eng.Stop()
		}()
		eng.Run()
	}

	stats := eng.Stats()
	slog.Info("run finished",
		"ticks", humanize.Comma(int64(eng.Tick())),
		"population", stats.Population,
		"susceptible", stats.Susceptible,
		"infected", stats.Infected,
		"recovered", stats.Recovered,
		"mean_energy", fmt.Sprintf("%.1f", stats.MeanEnergy),
		"windows", len(eng.Recorder().Windows()),
		"contact_pairs", humanize.Comma(int64(eng.Recorder().Matrix().Len())),
	)

	if *outDir != "" {
		if err := eng.Recorder().WriteReport(*outDir); err != nil {
			slog.Error("failed to write report", "error", err)
			os.Exit(1)
		}
		slog.Info("report written", "dir", *outDir)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func consumeEvents(eng *engine.Engine) {
	for ev := range eng.Events() {
		switch ev.Type {
		case engine.EventExtinction:
			slog.Warn("extinction", "tick", ev.Tick)
		case engine.EventSimulationEnded:
			// Extinction or the step limit; leave the continuous loop too.
			slog.Info("simulation ended", "tick", ev.Tick, "reason", ev.Detail)
			eng.Stop()
		case engine.EventStatisticsUpdated:
			if ev.Stats != nil {
				slog.Info("window stats",
					"tick", ev.Tick,
					"population", ev.Stats.Population,
					"susceptible", ev.Stats.Susceptible,
					"infected", ev.Stats.Infected,
					"recovered", ev.Stats.Recovered,
					"mean_energy", fmt.Sprintf("%.1f", ev.Stats.MeanEnergy),
				)
			}
		}
	}
}
