package server

import (
	"net/http"

	"market-terminal/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Replay the last report of each pipeline on connect
			s.stateMutex.RLock()
			for _, report := range s.lastReports {
				client.send <- report
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case report := <-s.broadcast:
			s.stateMutex.Lock()
			s.lastReports[report.Pipeline] = report
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.send <- report:
				default:
					// Client too slow, disconnect to keep the Hub from blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a cycle report for delivery to all connected clients.
func (s *APIServer) Broadcast(report models.MCycleReport) {
	select {
	case s.broadcast <- report:
	default:
		s.Logger.Warning("Broadcast queue full, dropping %s cycle report", report.Pipeline)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MCycleReport, 64),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}
