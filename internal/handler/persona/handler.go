package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-interview/internal/model/persona"
	"github.com/zhouzirui/z-interview/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas persona.Store
}

// New 创建persona处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{name}", h.handleGetPersona)
}

// handleListPersonas 列出所有persona，顺序即面试发言顺序
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByName(chi.URLParam(r, "name"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, persona.ErrPersonaNotFound.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
