// Command kvclient dials a kvserver instance and exercises one of the
// sample service's methods from the command line.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"genrpc/client"
	"genrpc/kvservice"
	"genrpc/loadbalance"
	"genrpc/registry"

	"github.com/spf13/cobra"
)

var (
	serverAddr    string
	timeout       time.Duration
	etcdEndpoints []string
	serviceName   string
	balanceMode   string
)

var rootCmd = &cobra.Command{
	Use:   "kvclient",
	Short: "Call methods on a running kvserver instance",
}

var testIntCmd = &cobra.Command{
	Use:   "test-int [i32]",
	Short: "Call TestInt with the given i32 value (other widths fixed at 0)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return err
		}
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()
		fmt.Println(c.TestInt(0, 0, 0, 0, int32(n), 0, 0, 0))
		return nil
	},
}

var testStringCmd = &cobra.Command{
	Use:   "test-string [text]",
	Short: "Call TestString with the given text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()
		fmt.Println(c.TestString(args[0]))
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Connect and print every onKeyChanged push until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		c.OnKeyChanged = func(e kvservice.KeyChangeEvent) {
			fmt.Printf("%s key=%q old=%q new=%q ts=%d\n", e.Type, e.Key, e.Old, e.New, e.Ts)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "127.0.0.1:9090", "kvserver address (ignored when --etcd is set)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "per-call timeout")
	rootCmd.PersistentFlags().StringSliceVar(&etcdEndpoints, "etcd", nil, "etcd endpoints to resolve --service through instead of dialing --server directly")
	rootCmd.PersistentFlags().StringVar(&serviceName, "service", "kvservice", "service name to discover via --etcd")
	rootCmd.PersistentFlags().StringVar(&balanceMode, "balance", "round-robin", "balancer to use with --etcd: round-robin, weighted-random, or consistent-hash")
	rootCmd.AddCommand(testIntCmd, testStringCmd, watchCmd)
}

func dial() (*kvservice.Client, func(), error) {
	opts := []client.Option{client.WithTimeout(timeout)}

	if len(etcdEndpoints) > 0 {
		reg, err := registry.NewEtcdRegistry(etcdEndpoints)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to etcd: %w", err)
		}
		bal, err := newBalancer(balanceMode)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, client.WithDiscovery(reg, bal, serviceName))
	}

	host, portStr, err := net.SplitHostPort(serverAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("parse --server: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, nil, fmt.Errorf("parse --server port: %w", err)
	}
	raw, err := client.Dial(host, port, opts...)
	if err != nil {
		return nil, nil, err
	}
	c := kvservice.NewClient(raw)
	return c, func() { _ = raw.Close() }, nil
}

func newBalancer(mode string) (loadbalance.Balancer, error) {
	switch mode {
	case "round-robin":
		return &loadbalance.RoundRobinBalancer{}, nil
	case "weighted-random":
		return &loadbalance.WeightedRandomBalancer{}, nil
	case "consistent-hash":
		return loadbalance.NewConsistentHashBalancer(), nil
	default:
		return nil, fmt.Errorf("unknown --balance mode %q", mode)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
