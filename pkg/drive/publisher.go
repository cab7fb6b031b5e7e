package drive

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/redbeacon-robotics/seekbot/internal/log"
	"github.com/redbeacon-robotics/seekbot/pkg/protocol"
)

// WSPublisher sends commands to an actuator bridge over a WebSocket.
// The connection is dialed lazily and redialed with backoff after a
// failure, so a flapping bridge costs at most one error per publish.
type WSPublisher struct {
	url string

	mu         sync.Mutex
	conn       *websocket.Conn
	nextRedial time.Time
	backoff    time.Duration
}

// NewWSPublisher creates a publisher for the given ws:// URL.
func NewWSPublisher(url string) *WSPublisher {
	return &WSPublisher{url: url, backoff: time.Second}
}

// Publish delivers one command, dialing if necessary.
func (p *WSPublisher) Publish(cmd Command) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		if time.Now().Before(p.nextRedial) {
			return errors.New("actuator connection down, redial pending")
		}
		conn, _, err := websocket.DefaultDialer.Dial(p.url, nil)
		if err != nil {
			p.nextRedial = time.Now().Add(p.backoff)
			return errors.Wrapf(err, "dial actuator %s", p.url)
		}
		p.conn = conn
		log.Info("actuator connected", "url", p.url)
	}

	msg, err := protocol.NewMessage(protocol.TypeCmdVel, cmd)
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		p.conn.Close()
		p.conn = nil
		p.nextRedial = time.Now().Add(p.backoff)
		return errors.Wrap(err, "write command")
	}
	return nil
}

// Close shuts the connection down.
func (p *WSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// ChanPublisher delivers commands to an in-process channel. A full
// channel drops the command rather than blocking the control loop.
type ChanPublisher struct {
	C chan Command
}

// NewChanPublisher creates a publisher with the given buffer depth.
func NewChanPublisher(depth int) *ChanPublisher {
	return &ChanPublisher{C: make(chan Command, depth)}
}

// Publish enqueues the command without blocking.
func (p *ChanPublisher) Publish(cmd Command) error {
	select {
	case p.C <- cmd:
		return nil
	default:
		return errors.New("command channel full")
	}
}

// Close is a no-op; the channel stays open for drained readers.
func (p *ChanPublisher) Close() error { return nil }

// LogPublisher logs each command at debug level. It is the default sink
// when no actuator URL is configured.
type LogPublisher struct{}

// Publish logs the command.
func (LogPublisher) Publish(cmd Command) error {
	log.Debug("cmd_vel", "linear_x", cmd.LinearX, "angular_z", cmd.AngularZ)
	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error { return nil }
