package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codecgen-platform/codecgen/internal/config"
	"github.com/codecgen-platform/codecgen/internal/dev"
)

// DevDependencies for the dev command
type DevDependencies struct {
	ConfigLoader   ConfigLoader
	ServerFactory  DevServerFactory
	SignalNotifier SignalNotifier
	Output         Output
}

// DevServerFactory builds the watch-mode server
type DevServerFactory interface {
	NewServer(cfg *config.Config, projectRoot string) DevServer
}

// DevServer regenerates codecs when schema files change
type DevServer interface {
	Start(ctx context.Context) error
}

// SignalNotifier abstracts signal delivery for testing
type SignalNotifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type defaultDevServerFactory struct{}

func (f *defaultDevServerFactory) NewServer(cfg *config.Config, projectRoot string) DevServer {
	regen := NewGenerateCommand()
	return dev.NewServer(cfg, projectRoot, regen)
}

type defaultSignalNotifier struct{}

func (n *defaultSignalNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (n *defaultSignalNotifier) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// DevCommand encapsulates the watch-mode logic with injected dependencies
type DevCommand struct {
	deps DevDependencies
}

// NewDevCommand creates a new dev command with default dependencies
func NewDevCommand() *DevCommand {
	return &DevCommand{
		deps: DevDependencies{
			ConfigLoader:   &defaultConfigLoader{},
			ServerFactory:  &defaultDevServerFactory{},
			SignalNotifier: &defaultSignalNotifier{},
			Output:         &defaultOutput{},
		},
	}
}

// WithDependencies allows injecting custom dependencies for testing
func (dc *DevCommand) WithDependencies(deps DevDependencies) *DevCommand {
	dc.deps = deps
	return dc
}

// Execute runs the dev command
func (dc *DevCommand) Execute(ctx context.Context) error {
	cfg, projectRoot, err := dc.deps.ConfigLoader.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	dc.deps.Output.Printf("Watching %s for schema changes...\n", projectRoot)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	dc.deps.SignalNotifier.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer dc.deps.SignalNotifier.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			dc.deps.Output.Println("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	server := dc.deps.ServerFactory.NewServer(cfg, projectRoot)
	if err := server.Start(ctx); err != nil {
		if err == context.Canceled {
			return nil
		}
		return fmt.Errorf("dev server error: %w", err)
	}

	return nil
}
