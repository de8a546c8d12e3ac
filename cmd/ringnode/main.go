// Command ringnode runs a single Chord ring member, exposing its RPCs over
// HTTP. Process bootstrap only: the real work lives in the chord package.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"

	"go.ringkeeper.dev/ring/chord"
	"go.ringkeeper.dev/ring/rtt"
	httptransport "go.ringkeeper.dev/ring/transport/http"
	"go.ringkeeper.dev/ring/util"
)

func main() {
	app := &cli.App{
		Name:  "ringnode",
		Usage: "run a single Chord DHT ring member",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "127.0.0.1",
				Usage: "host to advertise and listen on",
			},
			&cli.IntFlag{
				Name:     "port",
				Required: true,
				Usage:    "port to advertise and listen on",
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "host:port of an existing ring member to join; omit to start a new ring",
			},
			&cli.DurationFlag{
				Name:  "stabilize-interval",
				Value: 5 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "fix-finger-interval",
				Value: 1 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "predecessor-check-interval",
				Value: 5 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "rejoin-interval",
				Value: 30 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "do not squelch per-tick stabilizer log lines",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger, err := buildLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	self := chord.NewNodeRef(c.String("host"), c.Int("port"))

	recorder := rtt.NewInstrumentation(64)
	peerClient := httptransport.NewClient(recorder)

	node, err := chord.NewLocalNode(chord.NodeConfig{
		Logger:                   logger,
		Self:                     self,
		PeerClient:               peerClient,
		StabilizeInterval:        c.Duration("stabilize-interval"),
		FixFingerInterval:        c.Duration("fix-finger-interval"),
		PredecessorCheckInterval: c.Duration("predecessor-check-interval"),
		ReJoinInterval:           c.Duration("rejoin-interval"),
	})
	if err != nil {
		return fmt.Errorf("building node: %w", err)
	}

	server := httptransport.NewServer(node, logger)
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", c.String("host"), c.Int("port")))
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}

	httpServer := &http.Server{
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          util.NewHTTPErrorLogger(logger),
	}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if seed := c.String("seed"); seed != "" {
		host, port, perr := splitSeed(seed)
		if perr != nil {
			return perr
		}
		if err := node.Join(ctx, chord.NewNodeRef(host, port)); err != nil {
			return fmt.Errorf("joining ring via %s: %w", seed, err)
		}
	} else {
		if err := node.Create(); err != nil {
			return fmt.Errorf("creating ring: %w", err)
		}
	}

	logger.Info("ring node started", zap.String("self", self.String()))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info("shutting down")
	departCtx, departCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer departCancel()
	if err := node.Depart(departCtx); err != nil {
		logger.Warn("depart failed", zap.Error(err))
	}
	_ = httpServer.Shutdown(departCtx)
	return nil
}

func splitSeed(s string) (string, int, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("seed must be host:port, got %q", s)
	}
	host := s[:idx]
	var port int
	if _, err := fmt.Sscanf(s[idx+1:], "%d", &port); err != nil {
		return "", 0, fmt.Errorf("invalid seed port in %q: %w", s, err)
	}
	return host, port, nil
}

// buildLogger squelches the per-tick stabilizer debug lines unless verbose
// is requested, the same trick the gateway uses to drop one noisy log line.
func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if verbose {
		return base, nil
	}
	filtered := zap.New(zapfilter.NewFilteringCore(base.Core(), func(e zapcore.Entry, f []zapcore.Field) bool {
		return e.Level != zapcore.DebugLevel
	}))
	return filtered, nil
}
