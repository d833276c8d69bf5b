package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Krimson/eeg-explorer/viewer/internal/explorer"
)

// HTTPHandler обрабатывает HTTP запросы API просмотра
type HTTPHandler struct {
	service *explorer.Service
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(service *explorer.Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// RegisterRoutes регистрирует маршруты
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/options", h.GetOptions).Methods(http.MethodGet)
	api.HandleFunc("/subjects", h.ListSubjects).Methods(http.MethodGet)
	api.HandleFunc("/recordings", h.ExploreRecording).Methods(http.MethodGet)
	api.HandleFunc("/recordings/plot.png", h.PlotRecording).Methods(http.MethodGet)
	api.HandleFunc("/electrodes/overlay.png", h.ElectrodeOverlay).Methods(http.MethodGet)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/debug/stats", h.DebugStats).Methods(http.MethodGet)

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
}

// GetOptions godoc
// @Summary Picker choices
// @Description Conditions, tasks and highlightable electrodes
// @Tags Viewer
// @Produce json
// @Success 200 {object} explorer.Options
// @Router /api/options [get]
func (h *HTTPHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Options())
}

// ListSubjects godoc
// @Summary Subject catalog
// @Tags Viewer
// @Produce json
// @Success 200 {object} map[string][]string
// @Failure 404 {object} ErrorResponse "no datasets found"
// @Router /api/subjects [get]
func (h *HTTPHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.Subjects(r.Context())
	if err != nil {
		respondNotice(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"subjects": subjects,
		"count":    len(subjects),
	})
}

// ExploreRecording godoc
// @Summary Explore one recording
// @Description Resolves the selection, fetches the dataset and returns the chart traces.
// @Description Without the channels parameter the first five channels are shown;
// @Description an empty channels parameter returns the empty-selection state.
// @Tags Viewer
// @Produce json
// @Param subject query string true "Subject id, e.g. 01"
// @Param condition query string true "Normal Sleep (NS), Sleep Deprived (SD), ses-1 or ses-2"
// @Param task query string true "Eyes Open, Eyes Closed, eyesopen or eyesclosed"
// @Param channels query string false "Comma-separated channel labels"
// @Success 200 {object} explorer.View
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "dataset unavailable"
// @Router /api/recordings [get]
func (h *HTTPHandler) ExploreRecording(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Explore(r.Context(), requestFromQuery(r))
	if err != nil {
		respondNotice(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// PlotRecording godoc
// @Summary Chart of one recording
// @Tags Viewer
// @Produce png
// @Param subject query string true "Subject id"
// @Param condition query string true "Condition"
// @Param task query string true "Task"
// @Param channels query string false "Comma-separated channel labels"
// @Success 200 {file} binary
// @Failure 422 {object} ErrorResponse "empty selection"
// @Router /api/recordings/plot.png [get]
func (h *HTTPHandler) PlotRecording(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.service.Plot(r.Context(), requestFromQuery(r), &buf); err != nil {
		respondNotice(w, r, err)
		return
	}
	writePNG(w, buf.Bytes())
}

// ElectrodeOverlay godoc
// @Summary Brain image with highlighted electrodes
// @Tags Viewer
// @Produce png
// @Param electrodes query string false "Comma-separated electrode labels"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse "unknown electrode"
// @Router /api/electrodes/overlay.png [get]
func (h *HTTPHandler) ElectrodeOverlay(w http.ResponseWriter, r *http.Request) {
	electrodes := splitList(r.URL.Query()["electrodes"])

	var buf bytes.Buffer
	if err := h.service.OverlayPNG(electrodes, &buf); err != nil {
		respondNotice(w, r, err)
		return
	}
	writePNG(w, buf.Bytes())
}

// Health godoc
// @Summary Liveness probe
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DebugStats godoc
// @Summary Dataset resolver counters
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /debug/stats [get]
func (h *HTTPHandler) DebugStats(w http.ResponseWriter, r *http.Request) {
	resolver := h.service.Resolver()
	respondJSON(w, http.StatusOK, map[string]any{
		"store":     resolver.StoreName(),
		"resolver":  resolver.Stats().Snapshot(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// requestFromQuery читает выбор из query. Нет параметра channels - "еще не выбрано";
// пустой параметр - явный пустой выбор.
func requestFromQuery(r *http.Request) explorer.Request {
	q := r.URL.Query()
	raw, chosen := q["channels"]

	return explorer.Request{
		Subject:        strings.TrimPrefix(q.Get("subject"), "sub-"),
		Condition:      q.Get("condition"),
		Task:           q.Get("task"),
		Channels:       splitList(raw),
		ChannelsChosen: chosen,
	}
}

// splitList принимает и повторяющиеся параметры, и значения через запятую
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// NewRouter собирает HTTP handler целиком: маршруты API, websocket
// (если задан) и цепочку middleware.
func NewRouter(h *HTTPHandler, ws http.Handler, log zerolog.Logger) http.Handler {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	if ws != nil {
		router.Handle("/ws", ws)
	}
	return EnableCORS(RequestLogger(log)(Recover(router)))
}
