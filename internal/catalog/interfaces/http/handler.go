package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"pokefinder-cloud/internal/auth"
	catalogapp "pokefinder-cloud/internal/catalog/application"
	catalog "pokefinder-cloud/internal/catalog/domain"
	"pokefinder-cloud/internal/observability/metrics"
)

// maxUploadBytes bounds CSV uploads.
const maxUploadBytes = 8 << 20

// Handler provides the catalog HTTP endpoints.
type Handler struct {
	service  *catalogapp.Service
	importer *catalogapp.Importer
	stream   *Stream
	logger   *log.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *catalogapp.Service, importer *catalogapp.Importer, stream *Stream, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("catalog handler: nil service")
	}
	if importer == nil {
		return nil, errors.New("catalog handler: nil importer")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, importer: importer, stream: stream, logger: logger}, nil
}

// Mount registers the catalog routes.
func (h *Handler) Mount(router *mux.Router) {
	router.HandleFunc("/api/pokemon/", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/api/pokemon/fetch_from_api/", h.handleFetchFromAPI).Methods(http.MethodPost)
	router.HandleFunc("/api/pokemon/upload_from_csv/", h.handleUploadCSV).Methods(http.MethodPost)
	router.HandleFunc("/api/pokemon/export/csv", h.handleExportCSV).Methods(http.MethodGet)
	router.HandleFunc("/api/pokemon/export/xlsx", h.handleExportXLSX).Methods(http.MethodGet)
	if h.stream != nil {
		router.HandleFunc("/api/pokemon/stream", h.stream.ServeHTTP).Methods(http.MethodGet)
	}
	router.HandleFunc("/api/pokemon/{id}/", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/api/pokemon/{id}/", h.handleDelete).Methods(http.MethodDelete)
	router.HandleFunc("/api/pokemon/{id}/favorite/", h.handleFavorite).Methods(http.MethodPost)
	router.HandleFunc("/api/pokemon/{id}/card.pdf", h.handleCardPDF).Methods(http.MethodGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := catalogapp.ListQuery{
		Source: r.URL.Query().Get("source"),
		Search: r.URL.Query().Get("search"),
		UserID: auth.UserIDFromContext(r.Context()),
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "page must be an integer", http.StatusBadRequest)
			return
		}
		query.Page = page
	}

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidPage) {
			http.Error(w, "invalid page", http.StatusNotFound)
			return
		}
		h.logger.Printf("list pokemon: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	entity, err := h.service.Get(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("get pokemon %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.Delete(r.Context(), id, auth.UsernameFromContext(r.Context())); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("delete pokemon %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if _, err := h.service.ToggleFavorite(r.Context(), id, userID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("favorite pokemon %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entity, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		h.logger.Printf("reload pokemon %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

func (h *Handler) handleFetchFromAPI(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	count, err := h.importer.FetchFromAPI(r.Context(), limit)
	if err != nil {
		h.logger.Printf("fetch from api: %v", err)
		metrics.ObserveImport(string(catalog.SourceAPI), "error", 0)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	metrics.ObserveImport(string(catalog.SourceAPI), "", count)
	respondJSON(w, http.StatusCreated, map[string]int{"count": count})
}

func (h *Handler) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		http.Error(w, catalog.ErrNotCSV.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.importer.ImportCSV(r.Context(), file, auth.UsernameFromContext(r.Context()))
	if err != nil {
		metrics.ObserveImport(string(catalog.SourceCSV), "error", 0)
		if errors.Is(err, catalog.ErrEmptyFile) {
			http.Error(w, catalog.ErrEmptyFile.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Printf("upload csv %s: %v", header.Filename, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.ObserveImport(string(catalog.SourceCSV), "", count)
	respondJSON(w, http.StatusCreated, map[string]int{"count": count})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
