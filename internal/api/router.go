package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"climatestudio/internal/handlers"
	"climatestudio/internal/launcher"
)

// NewRouter builds the launcher's local status API.
func NewRouter(sess *launcher.Session, documentsDir string, groupSize int) *mux.Router {
	r := mux.NewRouter()

	sessHandler := handlers.NewSessionHandler(sess)
	docsHandler := handlers.NewDocumentsHandler(documentsDir, groupSize)

	r.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/ready", sessHandler.ReadyCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", sessHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/processes", sessHandler.GetProcesses).Methods(http.MethodGet)
	api.HandleFunc("/logs", sessHandler.GetLogs).Methods(http.MethodGet)
	api.HandleFunc("/documents", docsHandler.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{name:.+}", docsHandler.GetDocument).Methods(http.MethodGet)

	return r
}
