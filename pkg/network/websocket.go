package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"nhooyr.io/websocket"
)

// WSServer upgrades HTTP requests to WebSocket connections and feeds the
// messages read from each connection to the message handler, in order.
type WSServer struct {
	acceptOptions     *websocket.AcceptOptions
	connectHandler    ConnectHandler
	disconnectHandler DisconnectHandler
	messageHandler    MessageHandler
}

type NewWSServerOptions struct {
	// OriginPatterns lists the hosts allowed to open a connection besides the server's own.
	OriginPatterns    []string
	ConnectHandler    ConnectHandler
	DisconnectHandler DisconnectHandler
	MessageHandler    MessageHandler
}

type ConnectHandler func(wsConn *websocket.Conn) (uint32, error)

type DisconnectHandler func(clientID uint32)

type MessageHandler func(ctx context.Context, clientID uint32, message *messages.Message)

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		acceptOptions: &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		},
		connectHandler:    opts.ConnectHandler,
		disconnectHandler: opts.DisconnectHandler,
		messageHandler:    opts.MessageHandler,
	}
}

func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, s.acceptOptions)
	if err != nil {
		log.Error("Failed to accept WebSocket connection: %v", err)
		return
	}
	conn.SetReadLimit(messages.MaxMessageSize)
	log.Debug("New WebSocket connection from %s", r.RemoteAddr)

	s.handleWSConnection(r.Context(), conn)
}

// handleWSConnection handles a WebSocket connection until it is closed.
func (s *WSServer) handleWSConnection(ctx context.Context, conn *websocket.Conn) {
	clientID, err := s.connectHandler(conn)
	if err != nil {
		log.Error("Failed to connect client: %v", err)
		conn.Close(websocket.StatusInternalError, "failed to connect")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.disconnectHandler(clientID)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		message, err := ReadMessageFromWS(ctx, conn)
		if err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				log.Warn("Dropping malformed message from client %d: %v", clientID, err)
				continue
			}
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				log.Error("Error reading WebSocket message from client %d: %v", clientID, err)
			}
			log.Trace("Connection closed for client %d", clientID)
			return
		}

		s.messageHandler(ctx, clientID, message)
	}
}

// DecodeError is returned by ReadMessageFromWS when a frame was read but
// could not be decoded. The connection is still usable.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to deserialize message: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	typ, b, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageBinary {
		return nil, &DecodeError{Err: fmt.Errorf("unexpected %s frame", typ)}
	}

	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return msg, nil
}
