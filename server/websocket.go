package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the envelope for every frame in both directions. Client frames
// carry the text in Content and optional request options in Data.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Content string          `json:"content"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type ProgressData struct {
	JobID string `json:"jobId"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	logger *log.Logger
}

func (c *wsConn) sendMessage(msgType string, content string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := Message{
		Type:    msgType,
		Content: content,
		Data:    data,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Warn("Error sending message", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ws := &wsConn{conn: conn, logger: s.logger}
	ctx, cancel := context.WithCancel(r.Context())
	var jobs sync.WaitGroup
	defer func() {
		cancel()
		jobs.Wait()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Error reading message", "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			ws.sendMessage("error", fmt.Sprintf("invalid message: %v", err), nil)
			continue
		}

		jobs.Add(1)
		go func() {
			defer jobs.Done()
			s.handleMessage(ctx, ws, msg)
		}()
	}
}

func (s *Server) handleMessage(ctx context.Context, ws *wsConn, msg inboundMessage) {
	jobID := uuid.NewString()
	s.logger.Debug("WebSocket job", "type", msg.Type, "job_id", jobID)

	switch msg.Type {
	case "correct":
		var req CorrectRequest
		if err := decodeData(msg.Data, &req); err != nil {
			s.sendError(ws, jobID, err)
			return
		}
		req.Text = msg.Content

		segments, err := s.correct(ctx, req, func(done, total int) {
			ws.sendMessage("progress", fmt.Sprintf("%d/%d", done, total), ProgressData{
				JobID: jobID,
				Done:  done,
				Total: total,
			})
		})
		if err != nil {
			s.sendError(ws, jobID, err)
			return
		}
		ws.sendMessage("result", "", map[string]interface{}{
			"jobId":    jobID,
			"segments": segments,
		})

	case "chunk":
		var req ChunkRequest
		if err := decodeData(msg.Data, &req); err != nil {
			s.sendError(ws, jobID, err)
			return
		}
		req.Text = msg.Content

		result, err := s.chunk(req)
		if err != nil {
			s.sendError(ws, jobID, err)
			return
		}
		ws.sendMessage("result", "", map[string]interface{}{
			"jobId":  jobID,
			"result": result,
		})

	default:
		ws.sendMessage("error", fmt.Sprintf("unknown message type %q", msg.Type), map[string]string{"jobId": jobID})
	}
}

func (s *Server) sendError(ws *wsConn, jobID string, err error) {
	if _, ok := asValidation(err); !ok {
		s.logger.Error("WebSocket job failed", "job_id", jobID, "error", err)
	}
	ws.sendMessage("error", err.Error(), map[string]string{"jobId": jobID})
}

func decodeData(data json.RawMessage, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return invalid("invalid message data: %v", err)
	}
	return nil
}
