package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/scpfw/internal/log"
	"github.com/cuemby/scpfw/pkg/module"
	"github.com/cuemby/scpfw/pkg/scheduler"
)

// Manifest is the demo product's on-disk configuration: which build-level
// tunables to pass to module.NewRegistry, and how to set up logging. The
// framework packages never read this or any other file — only this demo
// binary does, and it hands the result down as plain config structs.
type Manifest struct {
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`

	Scheduler struct {
		PoolSize         int `yaml:"pool_size"`
		TaskFIFOCapacity int `yaml:"task_fifo_capacity"`
		ISRFIFOCapacity  int `yaml:"isr_fifo_capacity"`
	} `yaml:"scheduler"`

	BindRounds int `yaml:"bind_rounds"`
}

// DefaultManifest returns a manifest matching module.DefaultRegistryConfig,
// used when no --manifest flag is given.
func DefaultManifest() Manifest {
	var m Manifest
	m.Log.Level = string(log.InfoLevel)
	def := scheduler.DefaultConfig()
	m.Scheduler.PoolSize = def.PoolSize
	m.Scheduler.TaskFIFOCapacity = def.TaskFIFOCapacity
	m.Scheduler.ISRFIFOCapacity = def.ISRFIFOCapacity
	m.BindRounds = module.DefaultRegistryConfig().BindRounds
	return m
}

// LoadManifest reads and parses a YAML product manifest from path.
func LoadManifest(path string) (Manifest, error) {
	m := DefaultManifest()
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// RegistryConfig converts the manifest into the module.RegistryConfig the
// demo registry is built with.
func (m Manifest) RegistryConfig() module.RegistryConfig {
	return module.RegistryConfig{
		BindRounds: m.BindRounds,
		Scheduler: scheduler.Config{
			PoolSize:         m.Scheduler.PoolSize,
			TaskFIFOCapacity: m.Scheduler.TaskFIFOCapacity,
			ISRFIFOCapacity:  m.Scheduler.ISRFIFOCapacity,
		},
		Trap: func(err error) {
			log.Logger.Fatal().Err(err).Msg("bring-up failed")
		},
	}
}

// LogConfig converts the manifest's logging section into log.Config.
func (m Manifest) LogConfig() log.Config {
	return log.Config{
		Level:      log.Level(m.Log.Level),
		JSONOutput: m.Log.JSON,
	}
}
