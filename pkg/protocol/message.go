// Package protocol defines the WebSocket message types spoken on the wire.
// This package is shared by the controller's ingest server, the velocity
// command publisher, and the sensor feed tools.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Sensor → controller messages
	TypeBlobs  MessageType = "blobs"  // Color blob frame
	TypeDepth  MessageType = "depth"  // Depth point buffer
	TypeBumper MessageType = "bumper" // Contact event

	// Controller → actuator messages
	TypeCmdVel MessageType = "cmd_vel" // Velocity command

	// Controller → dashboard messages
	TypeStatus MessageType = "status" // Arbiter state + snapshot

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// Pong builds the reply to a ping, echoing the ping's payload so the
// sender can match request and response.
func Pong(ping *Message) *Message {
	return &Message{
		Type:      TypePong,
		Timestamp: time.Now().UnixMilli(),
		Data:      ping.Data,
	}
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}
