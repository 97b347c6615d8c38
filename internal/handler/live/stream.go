// Package live streams interview progress to clients while a run is in flight.
package live

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	interviewhandler "github.com/zhouzirui/z-interview/internal/handler/interview"
	model "github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/service/archive"
	interviewsvc "github.com/zhouzirui/z-interview/internal/service/interview"
	"github.com/zhouzirui/z-interview/pkg/utils"
)

// Handler serves live interview runs over SSE and websocket.
type Handler struct {
	runner   interviewhandler.Runner
	archive  archive.Store
	upgrader websocket.Upgrader
}

// New creates the live handler. A nil runner disables both endpoints.
func New(runner interviewhandler.Runner, store archive.Store) *Handler {
	return &Handler{
		runner:  runner,
		archive: store,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册实时面试路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interviews/stream", h.handleStream)
	r.Get("/ws/interviews", h.handleWebSocket)
}

// runFinished is the payload of the closing event.
type runFinished struct {
	RunID  string         `json:"run_id"`
	Record archive.Record `json:"record"`
}

type runFailed struct {
	RunID   string                 `json:"run_id,omitempty"`
	Code    interviewsvc.ErrorCode `json:"code,omitempty"`
	Message string                 `json:"message"`
}

// requestFromQuery reads repeated "question" and "participant" parameters.
func requestFromQuery(r *http.Request) interviewhandler.RunRequest {
	query := r.URL.Query()
	var participants []string
	for _, p := range query["participant"] {
		for _, name := range strings.Split(p, ",") {
			if name = strings.TrimSpace(name); name != "" {
				participants = append(participants, name)
			}
		}
	}
	return interviewhandler.RunRequest{
		Participants: participants,
		Questions:    query["question"],
		Mode:         query.Get("mode"),
	}
}

// handleStream runs an interview and forwards every progress event as SSE.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req, err := requestFromQuery(r).ToRequest()
	if err != nil {
		utils.RespondError(w, interviewhandler.StatusFor(err), err.Error())
		return
	}

	utils.SetupSSEHeaders(w)
	runID := uuid.NewString()
	log.Printf("[stream] run=%s start mode=%s questions=%d", runID, req.Mode, len(req.Questions))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// A failed write means the client left; cancelling stops the run.
	emit := func(event string, data any) {
		if err := utils.SendSSEEvent(w, flusher, event, data); err != nil {
			log.Printf("[stream] run=%s %v", runID, err)
			cancel()
		}
	}

	emit("start", map[string]any{"run_id": runID, "mode": req.Mode})
	record, err := h.run(ctx, req, func(e interviewsvc.Event) {
		if ctx.Err() == nil {
			emit(string(e.Kind), e)
		}
	})
	if err != nil {
		log.Printf("[stream] run=%s failed: %v", runID, err)
		emit("error", runFailed{RunID: runID, Code: interviewsvc.CodeOf(err), Message: err.Error()})
		return
	}
	emit("done", runFinished{RunID: runID, Record: record})
	log.Printf("[stream] run=%s done record=%s", runID, record.ID)
}

// run executes req and archives the finished session. The returned record
// carries no session body.
func (h *Handler) run(ctx context.Context, req interviewsvc.Request, observer interviewsvc.Observer) (archive.Record, error) {
	session, err := h.runner.RunWithObserver(ctx, req, observer)
	if err != nil {
		return archive.Record{}, err
	}
	return h.save(ctx, req.Mode, session)
}

func (h *Handler) save(ctx context.Context, mode model.Mode, session *model.Session) (archive.Record, error) {
	var (
		record archive.Record
		err    error
	)
	if h.archive == nil {
		record, err = archive.NewRecord(mode, session)
	} else {
		record, err = h.archive.Save(ctx, mode, session)
	}
	if err != nil {
		return archive.Record{}, err
	}
	record.Session = nil
	return record, nil
}
