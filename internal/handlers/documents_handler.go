package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"climatestudio/internal/docs"
	"climatestudio/internal/models"
)

// DocumentsHandler serves the climate document corpus the agent
// network reads, grouped the way the deep-rag tools consume it.
type DocumentsHandler struct {
	root      string
	groupSize int
}

func NewDocumentsHandler(root string, groupSize int) *DocumentsHandler {
	return &DocumentsHandler{root: root, groupSize: groupSize}
}

func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	files, err := docs.Index(h.root)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "Failed to index documents")
		return
	}

	groups := []models.DocumentGroup{}
	for i, g := range docs.GroupFiles(files, h.groupSize) {
		groups = append(groups, models.DocumentGroup{Group: i, Files: g})
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *DocumentsHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	content, err := docs.LoadText(h.root, name)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeError(w, status, err, "Failed to load document: "+name)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}
