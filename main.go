package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"i4.energy/across/cellnet/modem"
	"i4.energy/across/cellnet/netif"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCmdRoot().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newCmdRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "cellnet",
		Short:        "Cellular modem network interface",
		Long:         "Connect a u-blox cellular modem to a packet data network and exchange data over its sockets.",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("serial-port", "/dev/ttyACM0", "Serial port to connect to the modem")
	flags.Int("baud-rate", modem.DefaultBaudRate, "Baud rate for serial communication")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("sim-pin", "", "SIM card PIN code (if required)")
	flags.String("apn", "internet", "Access point name of the packet data network")
	flags.String("apn-user", "", "APN user name")
	flags.String("apn-password", "", "APN password")
	flags.Bool("debug", false, "Trace the modem exchange")
	flags.Duration("timeout", 10*time.Second, "How long an exchange waits for the reply")

	root.AddCommand(newCmdServe(), newCmdStatus(), newCmdExchange())
	return root
}

func newCmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect and serve the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), config, logger)
		},
	}
	cmd.Flags().String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	return cmd
}

func newCmdStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Connect and print device and network status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			// A failed connect still reports how far the modem got.
			iface, err := connect(cmd.Context(), config, logger)
			if iface != nil {
				defer iface.Close(context.Background())
				fmt.Fprintln(cmd.OutOrStdout(), renderStatus(newStatusResponse(iface)))
			}
			return err
		},
	}
}

func newCmdExchange() *cobra.Command {
	var network string

	cmd := &cobra.Command{
		Use:   "exchange <address> <payload>",
		Short: "Send a payload and print the reply",
		Example: `
# Ask a TCP echo service
$ cellnet exchange 93.184.216.34:7 hello

# Send a datagram
$ cellnet exchange --network udp 10.0.0.2:5683 ping
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			iface, err := connect(cmd.Context(), config, logger)
			if iface != nil {
				defer iface.Close(context.Background())
			}
			if err != nil {
				return err
			}

			reply, err := exchange(cmd.Context(), iface, network, args[0], []byte(args[1]), config.Timeout)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(reply, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&network, "network", "tcp", "Network to use (tcp, udp)")
	return cmd
}

// setup loads the configuration and installs the logger.
func setup(cmd *cobra.Command) (*Config, *slog.Logger, error) {
	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(cmd.Flags()))
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return config, logger, nil
}

// connect opens the modem and joins the configured APN. The returned
// Interface is non-nil once created, also on error, and must be closed.
func connect(ctx context.Context, config *Config, logger *slog.Logger) (*netif.Interface, error) {
	iface, err := netif.New(netif.Config{
		Dialer: modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		},
		SimPIN: config.SimPIN,
		Debug:  config.Debug,
		Logger: logger.With("component", "netif"),
	})
	if err != nil {
		return nil, fmt.Errorf("create interface: %w", err)
	}

	logger.Info("Connecting", "serial_port", config.SerialPort, "apn", config.APN)
	if err := iface.Connect(ctx, config.APN, config.APNUser, config.APNPassword); err != nil {
		logger.Error("Failed to connect", "error", err)
		return iface, err
	}
	return iface, nil
}

// serve connects and runs the HTTP gateway until ctx is cancelled.
func serve(ctx context.Context, config *Config, logger *slog.Logger) error {
	iface, err := connect(ctx, config, logger)
	if iface != nil {
		defer func() {
			logger.Info("Closing modem connection")
			if err := iface.Close(context.Background()); err != nil {
				logger.Error("Failed to close modem", "error", err)
			}
		}()
	}
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: NewServer(logger.With("component", "server"), iface, config.Timeout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Closing HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Warn("Failed to notify systemd", "error", err)
	} else if sent {
		logger.Debug("Notified systemd readiness")
	}

	return g.Wait()
}
