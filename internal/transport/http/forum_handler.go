package http

import (
	"net/http"

	"studysync/internal/app"
)

// ForumHandler exposes the minimal forum surface.
type ForumHandler struct {
	forum *app.ForumService
}

func NewForumHandler(forum *app.ForumService) *ForumHandler {
	return &ForumHandler{forum: forum}
}

type askQuestionRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *ForumHandler) ask(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "not authenticated"})
		return
	}
	var req askQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	question, err := h.forum.Ask(r.Context(), claims.UserID, req.Title, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *ForumHandler) list(w http.ResponseWriter, r *http.Request) {
	questions, err := h.forum.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}
