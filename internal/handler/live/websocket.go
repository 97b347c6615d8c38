package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	interviewhandler "github.com/zhouzirui/z-interview/internal/handler/interview"
	interviewsvc "github.com/zhouzirui/z-interview/internal/service/interview"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingPeriod   = 54 * time.Second
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	RunID     string `json:"runId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接，每条 "start" 消息运行一次访谈，同一连接上的访谈依次执行。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		http.Error(w, "ai service unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go pingLoop(ctx, conn)

	send(conn, outgoingMessage{Type: "connected"})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "start":
			if !h.handleStart(ctx, conn, msg.Data) {
				return
			}
		default:
			send(conn, outgoingMessage{Type: "error", Data: runFailed{Message: "unsupported message type: " + msg.Type}})
		}
	}
}

// handleStart runs one interview. It reports false once the connection is unusable.
func (h *Handler) handleStart(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) bool {
	var payload interviewhandler.RunRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		return send(conn, outgoingMessage{Type: "error", Data: runFailed{Message: "invalid start payload"}})
	}
	req, err := payload.ToRequest()
	if err != nil {
		return send(conn, outgoingMessage{Type: "error", Data: runFailed{Code: interviewsvc.CodeOf(err), Message: err.Error()}})
	}

	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("[ws] run=%s start mode=%s questions=%d", runID, req.Mode, len(req.Questions))
	alive := send(conn, outgoingMessage{Type: "start", RunID: runID})
	record, err := h.run(runCtx, req, func(e interviewsvc.Event) {
		if alive && !send(conn, outgoingMessage{Type: string(e.Kind), RunID: runID, Data: e}) {
			alive = false
			cancel()
		}
	})
	if !alive {
		log.Printf("[ws] run=%s abandoned by client", runID)
		return false
	}
	if err != nil {
		log.Printf("[ws] run=%s failed: %v", runID, err)
		return send(conn, outgoingMessage{Type: "error", RunID: runID, Data: runFailed{RunID: runID, Code: interviewsvc.CodeOf(err), Message: err.Error()}})
	}
	log.Printf("[ws] run=%s done record=%s", runID, record.ID)
	return send(conn, outgoingMessage{Type: "done", RunID: runID, Data: runFinished{RunID: runID, Record: record}})
}

func send(conn *websocket.Conn, msg outgoingMessage) bool {
	msg.Timestamp = time.Now().Unix()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write %s failed: %v", msg.Type, err)
		return false
	}
	return true
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
