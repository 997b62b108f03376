package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/yanet-platform/switchsim/common/go/logging"
	"github.com/yanet-platform/switchsim/common/go/xcmd"
	"github.com/yanet-platform/switchsim/internal/frame"
	"github.com/yanet-platform/switchsim/internal/report"
	"github.com/yanet-platform/switchsim/internal/shell"
	"github.com/yanet-platform/switchsim/internal/topology"
)

var cmd Cmd

// Cmd is the command line arguments.
type Cmd struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string
	// PcapPath is the path to the capture file. Empty disables capturing.
	PcapPath string
}

var rootCmd = &cobra.Command{
	Use:   "switchsim",
	Short: "Simulator of unmanaged Ethernet switches",
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run an interactive shell over a simulated network",
	Run: func(_ *cobra.Command, _ []string) {
		exit(runShell(cmd))
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a network from the configuration and play its scenario",
	Run: func(_ *cobra.Command, _ []string) {
		exit(runScenario(cmd))
	},
}

func init() {
	shellCmd.Flags().StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to the configuration file to preload")

	runCmd.Flags().StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to the configuration file (required)")
	runCmd.Flags().StringVar(&cmd.PcapPath, "pcap", "", "Path to write captured frames to")
	runCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(shellCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func exit(err error) {
	if err == nil || xcmd.IsInterrupted(err) {
		return
	}

	fmt.Printf("ERROR: %v\n", err)
	os.Exit(1)
}

func loadConfig(path string) (*topology.Config, error) {
	if path == "" {
		return topology.DefaultConfig(), nil
	}

	cfg, err := topology.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

func runShell(cmd Cmd) error {
	cfg, err := loadConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}

	log, _, err := logging.Init(&cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	network := topology.NewNetwork(
		topology.WithLog(log),
		topology.WithPayloadSize(cfg.PayloadSize()),
	)
	if err := network.Apply(cfg); err != nil {
		return fmt.Errorf("failed to build network: %w", err)
	}

	options := []shell.Option{shell.WithLog(log)}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		options = append(options, shell.WithPrompt("> "))
	}
	sh := shell.New(network, os.Stdin, os.Stdout, options...)

	return runUntilInterrupted(log, sh.Run)
}

func runScenario(cmd Cmd) error {
	cfg, err := loadConfig(cmd.ConfigPath)
	if err != nil {
		return err
	}

	log, _, err := logging.Init(&cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	var capture io.Writer
	if cmd.PcapPath != "" {
		f, err := os.Create(cmd.PcapPath)
		if err != nil {
			return fmt.Errorf("failed to create capture file: %w", err)
		}
		defer f.Close()

		capture = f
	}

	return runUntilInterrupted(log, func(ctx context.Context) error {
		return play(ctx, cfg, os.Stdout, capture, log)
	})
}

// play builds the configured network, sends the scenario through it and
// reports the final state of every device.
func play(
	ctx context.Context,
	cfg *topology.Config,
	out io.Writer,
	capture io.Writer,
	log *zap.SugaredLogger,
) error {
	options := []topology.Option{
		topology.WithLog(log),
		topology.WithPayloadSize(cfg.PayloadSize()),
	}

	var pcap *frame.Capture
	if capture != nil {
		var err error
		pcap, err = frame.NewCapture(capture, 0)
		if err != nil {
			return err
		}
		options = append(options, topology.WithCapture(pcap))
	}

	network := topology.NewNetwork(options...)
	if err := network.Apply(cfg); err != nil {
		return fmt.Errorf("failed to build network: %w", err)
	}

	if err := network.RunScenario(ctx, cfg.Scenario); err != nil {
		return fmt.Errorf("failed to run scenario: %w", err)
	}

	for _, name := range network.SwitchNames() {
		if err := report.Switch(out, network, name); err != nil {
			return err
		}
	}
	for _, name := range network.HostNames() {
		if err := report.Host(out, network, name); err != nil {
			return err
		}
	}

	if pcap != nil {
		log.Infow("captured frames", zap.Int64("count", pcap.Count()))
	}

	return nil
}

// runUntilInterrupted runs fn until it returns or the process is
// interrupted.
//
// Normal completion of fn stops the signal waiter.
func runUntilInterrupted(log *zap.SugaredLogger, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		defer cancel()
		return fn(ctx)
	})
	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		if xcmd.IsInterrupted(err) {
			log.Infof("caught signal: %v", err)
			return err
		}
		return nil
	})

	return wg.Wait()
}
