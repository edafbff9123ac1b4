// Package relay is a client for the desktop controller's WebSocket relay.
//
// The relay is an opaque request/response channel: a command addressed to a
// plugin or device goes out, and exactly one response with the same id comes
// back. The relay also pushes unsolicited status messages, which the client
// exposes on [Client.Events].
//
// Wire messages are JSON text frames:
//
//	-> {"type":"command","id":"<uuid>","plugin_id":"prusa","command":"status","args":{}}
//	<- {"type":"command_response","id":"<uuid>","success":true,"result":{...}}
//	<- {"type":"status","target_id":"prusa","status":"green","data":{...}}
package relay

import (
	"encoding/json"
)

// Message types.
const (
	TypeCommand  = "command"
	TypeResponse = "command_response"
	TypeStatus   = "status"
	TypeError    = "error"
)

// request is an outgoing command.
type request struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	PluginID string `json:"plugin_id"`
	Command  string `json:"command"`
	Args     any    `json:"args,omitempty"`
}

// envelope is any incoming message.
type envelope struct {
	Type string `json:"type"`

	// command_response
	ID      string          `json:"id,omitempty"`
	Success bool            `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`

	// status
	TargetID string          `json:"target_id,omitempty"`
	Status   string          `json:"status,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}
