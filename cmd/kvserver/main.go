// Command kvserver runs the kvstore example service over the stream
// binding, optionally advertising itself in an etcd-backed registry.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genrpc/examples/kvstore"
	"genrpc/kvservice"
	"genrpc/registry"
	"genrpc/server"
	"genrpc/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listenAddr    string
	advertiseAddr string
	etcdEndpoints []string
	rateLimit     float64
	rateBurst     int
)

var rootCmd = &cobra.Command{
	Use:   "kvserver",
	Short: "Run the kvservice example server",
	RunE:  runServer,
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:9090", "address to bind the stream listener")
	rootCmd.Flags().StringVar(&advertiseAddr, "advertise", "", "address to register in etcd (defaults to --listen)")
	rootCmd.Flags().StringSliceVar(&etcdEndpoints, "etcd", nil, "etcd endpoints for service discovery (unset disables registration)")
	rootCmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "requests/sec admitted across the dispatcher (0 disables limiting)")
	rootCmd.Flags().IntVar(&rateBurst, "rate-burst", 10, "token bucket burst size for --rate-limit")
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := telemetry.NewLogger()
	defer logger.Sync()

	opts := []server.Option{server.WithLogger(logger)}
	if rateLimit > 0 {
		opts = append(opts, server.WithRateLimit(rateLimit, rateBurst))
	}

	var reg registry.Registry
	if len(etcdEndpoints) > 0 {
		etcdReg, err := registry.NewEtcdRegistry(etcdEndpoints)
		if err != nil {
			return fmt.Errorf("connect to etcd: %w", err)
		}
		reg = etcdReg
		opts = append(opts, server.WithRegistry(reg))
	}

	advertise := advertiseAddr
	if advertise == "" {
		advertise = listenAddr
	}

	// The dispatcher needs the service before the server exists, but the
	// service's push channel needs the server's broadcaster — built the
	// other way around. The store starts pushless and is wired to the
	// server's broadcaster once the server exists.
	store := kvstore.New(nil)
	srv := server.NewStreamServer(kvservice.NewDispatcher(store), opts...)
	store.SetPushes(kvservice.NewPushes(srv))

	if err := srv.Start("tcp", listenAddr, advertise); err != nil {
		return fmt.Errorf("start listener: %w", err)
	}
	if reg != nil {
		if err := srv.RegisterService(reg, "kvservice", 10); err != nil {
			return fmt.Errorf("register service: %w", err)
		}
	}

	logger.Info("kvserver listening", zap.String("addr", srv.ListenAddr()))

	runDone := make(chan error, 1)
	go func() { runDone <- srv.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case err := <-runDone:
		if err != nil {
			return err
		}
	}

	return srv.Stop(5 * time.Second)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
