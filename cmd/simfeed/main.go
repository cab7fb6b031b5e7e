// simfeed: synthetic sensor feed for exercising the controller without
// hardware. Plays a scripted scenario against the ingest endpoints: the
// goal drifts across the image, a wall appears in the depth stream, and
// the bumper taps once — enough to walk the arbiter through every state.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/redbeacon-robotics/seekbot/internal/config"
	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/perception"
	"github.com/redbeacon-robotics/seekbot/pkg/protocol"
)

var (
	host = flag.String("host", "ws://localhost:9091", "ingest server base URL")
	hz   = flag.Float64("hz", 10, "frame rate for blob and depth streams")
)

// feed is one producer connection.
type feed struct {
	conn *websocket.Conn
}

func dialFeed(url string) (*feed, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	f := &feed{conn: conn}
	if err := f.healthCheck(); err != nil {
		conn.Close()
		return nil, err
	}
	return f, nil
}

// healthCheck confirms the ingest is answering before the scenario starts.
func (f *feed) healthCheck() error {
	if err := f.send(protocol.TypePing, nil); err != nil {
		return err
	}
	f.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	defer f.conn.SetReadDeadline(time.Time{})
	_, data, err := f.conn.ReadMessage()
	if err != nil {
		return err
	}
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		return err
	}
	if msg.Type != protocol.TypePong {
		return fmt.Errorf("health check: got %s, want %s", msg.Type, protocol.TypePong)
	}
	return nil
}

func (f *feed) send(msgType protocol.MessageType, v interface{}) error {
	msg, err := protocol.NewMessage(msgType, v)
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return f.conn.WriteMessage(websocket.TextMessage, data)
}

func main() {
	flag.Parse()
	log.Init("info")

	cfg := config.Default().Perception

	blobs, err := dialFeed(*host + "/ws/blobs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial blobs: %v\n", err)
		os.Exit(1)
	}
	depth, err := dialFeed(*host + "/ws/depth")
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial depth: %v\n", err)
		os.Exit(1)
	}
	bumper, err := dialFeed(*host + "/ws/bumper")
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial bumper: %v\n", err)
		os.Exit(1)
	}
	log.Info("simfeed connected", "host", *host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(float64(time.Second) / *hz))
	defer ticker.Stop()

	start := time.Now()
	bumped := false
	for {
		select {
		case <-sigChan:
			log.Info("simfeed stopping")
			return
		case <-ticker.C:
		}

		t := time.Since(start).Seconds()

		// Goal sweeps sinusoidally across the image and swells over time.
		cx := float64(cfg.ImageWidth)/2 + 200*math.Sin(t/4)
		area := 2000 + 400*t
		if err := blobs.send(protocol.TypeBlobs, perception.BlobFrame{
			Count: 1,
			Blobs: []perception.Blob{{Color: cfg.TargetColor, X: cx, Y: 240, Area: area}},
		}); err != nil {
			fmt.Fprintf(os.Stderr, "blob feed lost: %v\n", err)
			os.Exit(1)
		}

		// A wall enters the depth ROI between t=10s and t=14s.
		if err := depth.send(protocol.TypeDepth, depthScene(cfg, t > 10 && t < 14)); err != nil {
			fmt.Fprintf(os.Stderr, "depth feed lost: %v\n", err)
			os.Exit(1)
		}

		// One bumper tap at t=20s: press, release 300ms later.
		if !bumped && t > 20 {
			bumped = true
			if err := bumper.send(protocol.TypeBumper, perception.BumperEvent{Pressed: true}); err != nil {
				fmt.Fprintf(os.Stderr, "bumper feed lost: %v\n", err)
				os.Exit(1)
			}
			go func() {
				time.Sleep(300 * time.Millisecond)
				bumper.send(protocol.TypeBumper, perception.BumperEvent{Pressed: false})
			}()
		}
	}
}

// depthScene builds a frame of open floor, with a near wall patch inside
// the ROI when wall is set.
func depthScene(cfg config.PerceptionConfig, wall bool) perception.DepthFrame {
	buf := make([]float32, cfg.ImageWidth*cfg.ImageHeight)
	for i := range buf {
		buf[i] = 3.0
	}
	if wall {
		row := cfg.ROIRowStart + (cfg.ROIRowEnd-cfg.ROIRowStart)/2
		base := row * cfg.ImageWidth
		for col := 0; col < 100; col++ {
			buf[base+cfg.ImageWidth/2+col-50] = 0.4
		}
	}
	return perception.DepthFrame{Width: cfg.ImageWidth, Height: cfg.ImageHeight, Depth: buf}
}
