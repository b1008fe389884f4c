package network

import "errors"

// ErrConnectionClosedByServer is returned when the server closes the WebSocket connection
var ErrConnectionClosedByServer = errors.New("connection closed by server")

// ErrNotConnected is returned when sending before Start has connected
var ErrNotConnected = errors.New("not connected to server")

// JoinError is returned when the server refuses to attach the client to a session
type JoinError struct {
	Reason string
}

func (e *JoinError) Error() string {
	return "server join failure: " + e.Reason
}
