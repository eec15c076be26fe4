package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/scpfw/internal/demo"
	"github.com/cuemby/scpfw/internal/log"
	"github.com/cuemby/scpfw/pkg/metrics"
)

var (
	// Version information (set via ldflags during build).
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scpfw",
	Short: "scpfw - a small firmware-style module core and event scheduler",
	Long: `scpfw brings up a static graph of modules through Initialize, Bind, and
Start, then dispatches events and notifications between them one at a
time from a single cooperative scheduling loop.

This binary hosts a small fixture product (clock/sensor/timer) so the
core can be driven and observed from outside a test binary.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("scpfw version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bring up the demo product and run until interrupted",
	Long: `run loads a product manifest (or built-in defaults), builds the demo
module registry, brings it up through Initialize/Bind/Start, fires a
handful of Tick notifications to exercise the notification fan-out, and
keeps the scheduler alive until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		ticks, _ := cmd.Flags().GetInt("ticks")

		var manifest Manifest
		if manifestPath != "" {
			m, err := LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}
			manifest = m
			// Command-line logging flags win over the manifest's, since
			// OnInitialize already configured the logger from them before
			// this RunE runs — re-init from the manifest only when the user
			// changed neither --log-level nor --log-json.
			if !cmd.Flags().Changed("log-level") && !cmd.Flags().Changed("log-json") {
				log.Init(manifest.LogConfig())
			}
		} else {
			manifest = DefaultManifest()
		}

		product, err := demo.Build(manifest.RegistryConfig())
		if err != nil {
			return fmt.Errorf("bring up product: %w", err)
		}
		fmt.Println("product is up: clock, sensor, timer started")

		if metricsAddr != "" {
			collector := metrics.NewCollector(product.Registry.Scheduler, 0)
			collector.Start()
			defer collector.Stop()
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			go func() {
				if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
					log.Logger.Error().Err(err).Msg("metrics server exited")
				}
			}()
			fmt.Printf("metrics exposed at http://%s/metrics\n", metricsAddr)
		}

		for i := 0; i < ticks; i++ {
			// Odd ticks are raised the way real hardware would: the timer
			// IRQ fires, its ISR submits onto the interrupt FIFO, and the
			// publish happens when the deferred event dispatches in task
			// context. Even ticks publish directly from task context.
			if i%2 == 1 {
				if err := product.Interrupts.Trigger(demo.TimerIRQ); err != nil {
					return fmt.Errorf("tick %d: %w", i, err)
				}
				continue
			}
			if err := product.Timer.Tick(); err != nil {
				return fmt.Errorf("tick %d: %w", i, err)
			}
		}
		if n := product.Registry.Scheduler.Drain(product.Registry); ticks > 0 {
			fmt.Printf("drained %d event(s), sensor observed %d tick(s)\n", n, product.Sensor.Ticks())
		}

		fmt.Println("running. press Ctrl+C to stop.")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\nshutting down...")
		if err := product.Registry.StopAll(); err != nil {
			return fmt.Errorf("stop product: %w", err)
		}
		fmt.Println("shutdown complete")
		return nil
	},
}

func init() {
	runCmd.Flags().String("manifest", "", "Path to a YAML product manifest (built-in defaults if unset)")
	runCmd.Flags().String("metrics-addr", "", "Address to serve /metrics on (disabled if unset)")
	runCmd.Flags().Int("ticks", 3, "Number of demo Tick notifications to fire and drain at startup")
}
