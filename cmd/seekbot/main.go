// seekbot: reactive goal-seeking behavior controller for a wheeled robot.
// Fuses color blob, depth, and bumper streams into a perception snapshot
// and arbitrates search / approach / avoid / reached behaviors at 10 Hz,
// publishing velocity commands to the actuator bridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redbeacon-robotics/seekbot/internal/config"
	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/behavior"
	"github.com/redbeacon-robotics/seekbot/pkg/drive"
	"github.com/redbeacon-robotics/seekbot/pkg/perception"
	"github.com/redbeacon-robotics/seekbot/pkg/stream"
	"github.com/redbeacon-robotics/seekbot/pkg/web"
)

var configPath = flag.String("config", "", "path to JSON config (defaults apply if empty)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)
	log.Info("seekbot starting",
		"listen", cfg.ListenAddr,
		"dashboard", cfg.DashboardAddr,
		"actuator", cfg.ActuatorURL,
		"tick_hz", cfg.Arbiter.TickHz)

	// Perception: one board, three producers.
	board := perception.NewBoard()
	blobs := perception.NewBlobEstimator(cfg.Perception, board)
	depth := perception.NewDepthSampler(cfg.Perception, board)
	bumper := perception.NewBumperMonitor(board)

	// Command sink.
	var pub drive.Publisher = drive.LogPublisher{}
	if cfg.ActuatorURL != "" {
		pub = drive.NewWSPublisher(cfg.ActuatorURL)
	}
	defer pub.Close()

	// Sensor ingest.
	ingest := stream.NewServer(cfg.ListenAddr, blobs, depth, bumper)
	go func() {
		if err := ingest.Start(); err != nil {
			log.Error("ingest server failed", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional serial bumper alongside the websocket stream.
	if cfg.Serial.Enabled {
		sb, err := stream.OpenSerialBumper(cfg.Serial, bumper)
		if err != nil {
			log.Error("serial bumper unavailable", "err", err)
		} else {
			defer sb.Close()
			go func() {
				if err := sb.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("serial bumper stopped", "err", err)
				}
			}()
		}
	}

	// Behavior loop.
	arbiter := behavior.NewArbiter(cfg, board, pub)
	go arbiter.Run()

	// Telemetry dashboard.
	if cfg.DashboardAddr != "" {
		dash := web.NewServer(cfg.DashboardAddr, cfg, arbiter, board, ingest)
		go func() {
			if err := dash.Start(); err != nil {
				log.Error("dashboard failed", "err", err)
			}
		}()
		defer dash.Shutdown()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	cancel()
	arbiter.Stop()
	ingest.Shutdown()
}
