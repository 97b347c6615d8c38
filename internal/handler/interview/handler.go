// Package interview exposes interview runs and the session archive over HTTP.
package interview

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	model "github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/service/archive"
	interviewsvc "github.com/zhouzirui/z-interview/internal/service/interview"
	"github.com/zhouzirui/z-interview/internal/service/transcript"
	"github.com/zhouzirui/z-interview/pkg/utils"
)

// Runner executes one interview session.
type Runner interface {
	RunWithObserver(ctx context.Context, req interviewsvc.Request, observer interviewsvc.Observer) (*model.Session, error)
}

// Handler 面试运行与存档的HTTP处理器
type Handler struct {
	runner  Runner
	archive archive.Store
}

// New 创建面试处理器。runner 为 nil 时（未配置模型）运行接口返回 503，存档接口仍可读取。
func New(runner Runner, store archive.Store) *Handler {
	return &Handler{
		runner:  runner,
		archive: store,
	}
}

// RegisterRoutes 注册面试相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/interviews", h.handleRun)
	r.Get("/interviews", h.handleList)
	r.Get("/interviews/{id}", h.handleGet)
	r.Get("/interviews/{id}/transcript", h.handleTranscript)
}

// RunRequest is the body accepted by the run endpoints.
type RunRequest struct {
	Participants []string `json:"participants"`
	Questions    []string `json:"questions"`
	Mode         string   `json:"mode"`
}

// ToRequest converts the payload into a service request.
func (p RunRequest) ToRequest() (interviewsvc.Request, error) {
	mode, err := model.ParseMode(p.Mode)
	if err != nil {
		return interviewsvc.Request{}, &interviewsvc.Error{Code: interviewsvc.ErrorInvalidMode, Reason: "unknown_mode", Err: err}
	}
	return interviewsvc.Request{
		Participants: p.Participants,
		Questions:    p.Questions,
		Mode:         mode,
	}, nil
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
		return
	}

	var payload RunRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := payload.ToRequest()
	if err != nil {
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}

	session, err := h.runner.RunWithObserver(r.Context(), req, nil)
	if err != nil {
		log.Printf("[interview] run failed: %v", err)
		utils.RespondError(w, StatusFor(err), err.Error())
		return
	}

	record, err := h.archive.Save(r.Context(), req.Mode, session)
	if err != nil {
		log.Printf("[archive] save failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to archive session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.archive.List(r.Context())
	if err != nil {
		log.Printf("[archive] list failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	utils.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(transcript.FormatJSON)
	}
	format, err := transcript.ParseFormat(raw)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	record, ok := h.lookup(w, r)
	if !ok {
		return
	}

	data, err := transcript.Encode(record.Session, format)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to render transcript")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+record.ID+format.Extension()+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[archive] write transcript failed: %v", err)
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (archive.Record, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	record, err := h.archive.Get(r.Context(), id)
	if errors.Is(err, archive.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return archive.Record{}, false
	}
	if err != nil {
		log.Printf("[archive] get %s failed: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return archive.Record{}, false
	}
	return record, true
}

// StatusFor maps a run error onto an HTTP status.
func StatusFor(err error) int {
	switch interviewsvc.CodeOf(err) {
	case interviewsvc.ErrorInvalidQuestions, interviewsvc.ErrorInvalidMode, interviewsvc.ErrorUnknownParticipant:
		return http.StatusBadRequest
	case interviewsvc.ErrorInvalidCredential:
		return http.StatusServiceUnavailable
	case interviewsvc.ErrorInterrupted:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
