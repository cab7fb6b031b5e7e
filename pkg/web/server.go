// Package web provides a real-time telemetry dashboard for the controller:
// current behavior state, fused snapshot, last velocity command, and ingest
// counters, over REST and a status websocket.
package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/redbeacon-robotics/seekbot/internal/config"
	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/behavior"
	"github.com/redbeacon-robotics/seekbot/pkg/drive"
	"github.com/redbeacon-robotics/seekbot/pkg/hub"
	"github.com/redbeacon-robotics/seekbot/pkg/perception"
	"github.com/redbeacon-robotics/seekbot/pkg/stream"
)

// statusInterval is how often the dashboard snapshot is broadcast.
const statusInterval = 200 * time.Millisecond

// Status is one dashboard update.
type Status struct {
	State       string              `json:"state"`
	Snapshot    perception.Snapshot `json:"snapshot"`
	LastCommand drive.Command       `json:"last_command"`
	Ingest      stream.Stats        `json:"ingest"`
}

// Server is the dashboard server.
type Server struct {
	app  *fiber.App
	addr string

	arbiter *behavior.Arbiter
	board   *perception.Board
	ingest  *stream.Server
	cfg     config.Config

	statusHub *hub.Hub
	stop      chan struct{}
}

// NewServer builds the dashboard on addr.
func NewServer(addr string, cfg config.Config, arb *behavior.Arbiter, board *perception.Board, ingest *stream.Server) *Server {
	s := &Server{
		addr:      addr,
		arbiter:   arb,
		board:     board,
		ingest:    ingest,
		cfg:       cfg,
		statusHub: hub.New("status"),
		stop:      make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "seekbot dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/config", s.handleConfig)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start serves the dashboard and begins broadcasting status updates.
// Call in a goroutine.
func (s *Server) Start() error {
	go s.statusHub.Run()
	go s.broadcastLoop()
	log.Info("dashboard listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown stops the server and the broadcast loop.
func (s *Server) Shutdown() error {
	close(s.stop)
	return s.app.Shutdown()
}

// status assembles the current dashboard view.
func (s *Server) status() Status {
	return Status{
		State:       s.arbiter.State().String(),
		Snapshot:    s.board.Snapshot(),
		LastCommand: s.arbiter.LastCommand(),
		Ingest:      s.ingest.Stats(),
	}
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

func (s *Server) handleConfig(c *fiber.Ctx) error {
	return c.JSON(s.cfg)
}

func (s *Server) handleStatusWS(conn *websocket.Conn) {
	client := hub.NewClient(s.statusHub, conn)
	client.Run()
}

// broadcastLoop pushes status updates to connected clients at a fixed
// cadence, skipping the work entirely when nobody is watching.
func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			if err := s.statusHub.BroadcastJSON(s.status()); err != nil {
				log.Warn("status broadcast failed", "err", err)
			}
		}
	}
}
