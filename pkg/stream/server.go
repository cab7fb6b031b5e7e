// Package stream receives the robot's sensor streams. Upstream producers
// (the color segmenter, the depth driver, the bumper driver) connect as
// websocket clients and push typed JSON frames; each frame is validated and
// handed to its perception processor. A malformed frame is dropped with a
// warning and the prior snapshot retained — never a crash, never an
// out-of-bounds read.
package stream

import (
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/perception"
	"github.com/redbeacon-robotics/seekbot/pkg/protocol"
)

// Server is the sensor ingest endpoint.
type Server struct {
	app  *fiber.App
	addr string

	blobs  *perception.BlobEstimator
	depth  *perception.DepthSampler
	bumper *perception.BumperMonitor

	// Per-stream counters of accepted and dropped frames.
	blobsIn, blobsDropped   atomic.Uint64
	depthIn, depthDropped   atomic.Uint64
	bumperIn, bumperDropped atomic.Uint64
}

// Stats is a point-in-time view of the ingest counters.
type Stats struct {
	BlobsIn       uint64 `json:"blobs_in"`
	BlobsDropped  uint64 `json:"blobs_dropped"`
	DepthIn       uint64 `json:"depth_in"`
	DepthDropped  uint64 `json:"depth_dropped"`
	BumperIn      uint64 `json:"bumper_in"`
	BumperDropped uint64 `json:"bumper_dropped"`
}

// NewServer builds the ingest server on addr.
func NewServer(addr string, blobs *perception.BlobEstimator, depth *perception.DepthSampler, bumper *perception.BumperMonitor) *Server {
	s := &Server{
		addr:   addr,
		blobs:  blobs,
		depth:  depth,
		bumper: bumper,
	}

	app := fiber.New(fiber.Config{
		AppName:               "seekbot ingest",
		DisableStartupMessage: true,
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/blobs", websocket.New(s.handleBlobs))
	app.Get("/ws/depth", websocket.New(s.handleDepth))
	app.Get("/ws/bumper", websocket.New(s.handleBumper))

	s.app = app
	return s
}

// Start serves until the listener fails. Call in a goroutine.
func (s *Server) Start() error {
	log.Info("sensor ingest listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Stats returns current ingest counters.
func (s *Server) Stats() Stats {
	return Stats{
		BlobsIn:       s.blobsIn.Load(),
		BlobsDropped:  s.blobsDropped.Load(),
		DepthIn:       s.depthIn.Load(),
		DepthDropped:  s.depthDropped.Load(),
		BumperIn:      s.bumperIn.Load(),
		BumperDropped: s.bumperDropped.Load(),
	}
}

func (s *Server) handleBlobs(conn *websocket.Conn) {
	s.readLoop(conn, "blobs", protocol.TypeBlobs, s.applyBlobs)
}

func (s *Server) handleDepth(conn *websocket.Conn) {
	s.readLoop(conn, "depth", protocol.TypeDepth, s.applyDepth)
}

func (s *Server) handleBumper(conn *websocket.Conn) {
	s.readLoop(conn, "bumper", protocol.TypeBumper, s.applyBumper)
}

func (s *Server) applyBlobs(msg *protocol.Message) error {
	var frame perception.BlobFrame
	if err := msg.ParseData(&frame); err != nil {
		s.blobsDropped.Add(1)
		return err
	}
	s.blobsIn.Add(1)
	if err := s.blobs.HandleFrame(frame); err != nil {
		s.blobsDropped.Add(1)
		return err
	}
	return nil
}

func (s *Server) applyDepth(msg *protocol.Message) error {
	var frame perception.DepthFrame
	if err := msg.ParseData(&frame); err != nil {
		s.depthDropped.Add(1)
		return err
	}
	s.depthIn.Add(1)
	if err := s.depth.HandleFrame(frame); err != nil {
		s.depthDropped.Add(1)
		return err
	}
	return nil
}

func (s *Server) applyBumper(msg *protocol.Message) error {
	var event perception.BumperEvent
	if err := msg.ParseData(&event); err != nil {
		s.bumperDropped.Add(1)
		return err
	}
	s.bumperIn.Add(1)
	s.bumper.HandleEvent(event)
	return nil
}

// producerConn is the subset of the websocket connection the read loop
// uses. Tests substitute a fake.
type producerConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// readLoop pumps one producer connection. Frame errors are logged and the
// loop continues; only a connection error ends it. Producers may send a
// ping message at any time and get a pong echoing its payload back.
func (s *Server) readLoop(conn producerConn, stream string, want protocol.MessageType, apply func(*protocol.Message) error) {
	id := uuid.NewString()
	logger := log.With("stream", stream, "conn", id)
	logger.Info("producer connected")
	defer func() {
		conn.Close()
		logger.Info("producer disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			logger.Warn("unparseable frame dropped", "err", err)
			continue
		}
		if msg.Type == protocol.TypePing {
			reply, err := protocol.Pong(msg).Bytes()
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}
			continue
		}
		if msg.Type != want {
			logger.Warn("unexpected message type dropped", "type", string(msg.Type))
			continue
		}
		if err := apply(msg); err != nil {
			logger.Warn("frame dropped", "err", err)
		}
	}
}
