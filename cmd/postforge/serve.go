package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ternarybob/postforge/internal/api"
	"github.com/ternarybob/postforge/internal/logger"
	"github.com/ternarybob/postforge/internal/mcp"
	"github.com/ternarybob/postforge/internal/service"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the REST API",
	Long: `Start the REST API. When mcp.enabled is set the MCP tools are also
served over HTTP at /mcp.`,
	RunE: runServe,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if running, pid := service.IsRunning(cfg); running {
			fmt.Fprintf(cmd.OutOrStdout(), "postforge: running (PID %d)\nAddress: %s\n", pid, cfg.Address())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "postforge: stopped")
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		running, pid := service.IsRunning(cfg)
		if !running {
			fmt.Fprintln(cmd.OutOrStdout(), "postforge is not running")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Stopping postforge (PID %d)...\n", pid)
		if err := service.StopRunning(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "postforge stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd, stopCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Stop()

	if !cfg.API.Enabled {
		return errors.New("api.enabled is false, nothing to serve")
	}
	if running, pid := service.IsRunning(cfg); running {
		return fmt.Errorf("service already running (PID %d)", pid)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	gen, prompts, err := newGenerator(ctx, cfg, reg)
	if err != nil {
		return err
	}
	watchPrompts(ctx, cfg, prompts)

	apiServer := api.NewServer(cfg, gen, reg)
	if cfg.MCP.Enabled {
		apiServer.Mount("/mcp", mcp.NewServer(cfg, gen, version).HTTPHandler())
	}

	daemon := service.NewDaemon(cfg)
	daemon.OnStop(cancel)
	if err := daemon.Start(apiServer.Handler()); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "postforge %s started on %s\n", version, daemon.Addr())
	fmt.Fprintf(cmd.OutOrStdout(), "API: http://%s/generate\n", daemon.Addr())
	if cfg.MCP.Enabled {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP: http://%s/mcp\n", daemon.Addr())
	}

	daemon.Wait(ctx)
	return nil
}
