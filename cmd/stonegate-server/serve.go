package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/atomic"

	"github.com/hollowcube/stonegate/internal/broker"
	"github.com/hollowcube/stonegate/internal/config"
	"github.com/hollowcube/stonegate/internal/generation"
	"github.com/hollowcube/stonegate/internal/logging"
	"github.com/hollowcube/stonegate/internal/session"
	"github.com/hollowcube/stonegate/internal/world"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the server in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.LogLevel)

	seed := time.Now().UnixNano()
	if cfg.Server.Seed != nil {
		seed = *cfg.Server.Seed
	}

	w := world.NewWorld()
	gen := world.NewGenerator(seed)
	sched := generation.NewScheduler(w, gen, int(cfg.Server.GeneratorThreads))

	log.WithField("seed", seed).Info("pre-generating spawn region")
	sched.RequestRegion(0, 0, cfg.Server.ViewDistance)
	sched.AwaitRegion(0, 0, cfg.Server.ViewDistance)

	deps := &session.Deps{
		World:        w,
		Scheduler:    sched,
		Generator:    gen,
		Broker:       broker.New(),
		Config:       cfg,
		Log:          log,
		OnlineCount:  atomic.NewInt32(0),
		NextEntityID: atomic.NewInt32(0),
	}

	listener, err := net.Listen("tcp", cfg.Server.NetEndpoint)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.NetEndpoint, err)
	}
	log.WithField("addr", cfg.Server.NetEndpoint).Info("server listening")

	stop := make(chan struct{})
	go acceptLoop(listener, deps, log, stop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	close(stop)
	err = listener.Close()
	sched.Stop()
	return err
}

func acceptLoop(listener net.Listener, deps *session.Deps, log logging.Logger, stop <-chan struct{}) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-stop:
				return
			default:
				log.WithError(err).Warn("accept failed")
				continue
			}
		}
		go session.New(deps, conn).Run()
	}
}
