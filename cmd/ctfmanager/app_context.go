package main

import (
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/config"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/creds"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/execx"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/logger"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/orchestrator"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/resolve"
	"github.com/Spartan-Cybersecurity/HackTheCloud25/internal/terraform"
)

// AppContext bundles the services every subcommand needs, wired once per
// invocation from the loaded configuration.
type AppContext struct {
	Log      *logger.Logger
	Registry *config.Registry
	Creds    *creds.Resolver
	Manager  *terraform.Manager
	Prober   *terraform.Prober
	Engine   *resolve.Engine
	Orch     *orchestrator.Orchestrator
}

func buildAppContext(flags *rootFlags) (*AppContext, error) {
	registry, err := config.Load(flags.configDir, flags.basePath)
	if err != nil {
		return nil, err
	}

	level := "info"
	if flags.verbose {
		level = "debug"
	}
	if !flags.verbose && registry.Global().LogLevel != "" {
		level = registry.Global().LogLevel
	}

	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: true,
		LogDir:        registry.Global().LogDir,
	})
	if err != nil {
		return nil, err
	}

	credsFile, err := config.LoadCredentials(flags.configDir)
	if err != nil {
		return nil, err
	}

	runner := execx.NewRunner()
	resolver := creds.NewResolver(credsFile, runner, log)
	manager := terraform.NewManager(runner, resolver, log)
	prober := terraform.NewProber(runner, log)
	engine := resolve.NewEngine(registry, resolver, prober, manager, log)

	orch := orchestrator.New(orchestrator.Options{
		Registry:    registry,
		Credentials: resolver,
		Manager:     manager,
		Prober:      prober,
		Engine:      engine,
		Runner:      runner,
		Log:         log,
	})

	return &AppContext{
		Log:      log,
		Registry: registry,
		Creds:    resolver,
		Manager:  manager,
		Prober:   prober,
		Engine:   engine,
		Orch:     orch,
	}, nil
}
