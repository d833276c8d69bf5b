package handler

import (
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krimson/eeg-explorer/viewer/internal/channel"
	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/explorer"
	"github.com/Krimson/eeg-explorer/viewer/internal/overlay"
)

const recordingCSV = "Time,Fp1,Fz,O1,Cz,Pz,T7\n0,1,2,3,4,5,6\n0.5,2,3,4,5,6,7\n"

func newTestRouter(t *testing.T, files map[string]string) http.Handler {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	cache, err := dataset.NewLocalCache(dir)
	require.NoError(t, err)
	resolver := dataset.NewResolver(cache, nil, time.Second, zerolog.Nop())

	table, err := overlay.LoadTable("")
	require.NoError(t, err)
	layout, err := overlay.NewLayout(table, image.NewNRGBA(image.Rect(0, 0, 850, 655)))
	require.NoError(t, err)

	svc := explorer.NewService(resolver, layout, 320, 200, zerolog.Nop())
	return NewRouter(NewHTTPHandler(svc), nil, zerolog.Nop())
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSubjects(t *testing.T) {
	h := newTestRouter(t, map[string]string{
		"sub-02_ses-1_eyesopen.csv": recordingCSV,
		"sub-01_ses-2_eyesopen.csv": recordingCSV,
	})

	rec := get(t, h, "/api/subjects")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Subjects []string `json:"subjects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"01", "02"}, body.Subjects)
}

func TestSubjects_NoDatasets(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := get(t, h, "/api/subjects")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, explorer.KindNoDatasets, decodeError(t, rec).Kind)
}

func TestExploreRecording(t *testing.T) {
	h := newTestRouter(t, map[string]string{"sub-01_ses-1_eyesopen.csv": recordingCSV})

	tests := []struct {
		name     string
		query    string
		state    channel.State
		selected []string
	}{
		{"default selection", "", channel.StatePlotted, []string{"Fp1", "Fz", "O1", "Cz", "Pz"}},
		{"explicit channels", "&channels=O1,Fp1", channel.StatePlotted, []string{"O1", "Fp1"}},
		{"repeated parameter", "&channels=O1&channels=T7", channel.StatePlotted, []string{"O1", "T7"}},
		{"explicit empty", "&channels=", channel.StateEmptySelection, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, "/api/recordings?subject=01&condition=NS&task=Eyes+Open"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var view explorer.View
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
			assert.Equal(t, tt.state, view.Result.State)
			assert.Equal(t, tt.selected, view.SelectedChannels)
			assert.Equal(t, "Normal Sleep (NS)", view.Condition)
		})
	}
}

func TestExploreRecording_Errors(t *testing.T) {
	h := newTestRouter(t, map[string]string{"sub-01_ses-1_eyesopen.csv": recordingCSV})

	tests := []struct {
		name   string
		query  string
		status int
		kind   explorer.Kind
	}{
		{"unknown subject", "subject=07&condition=NS&task=eyesopen", http.StatusNotFound, explorer.KindUnknownSubject},
		{"bad condition", "subject=01&condition=awake&task=eyesopen", http.StatusBadRequest, explorer.KindInvalidSelection},
		{"bad channel", "subject=01&condition=NS&task=eyesopen&channels=Oz", http.StatusBadRequest, explorer.KindInvalidSelection},
		{"missing dataset", "subject=01&condition=SD&task=eyesopen", http.StatusBadGateway, explorer.KindDatasetUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, "/api/recordings?"+tt.query)
			assert.Equal(t, tt.status, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, tt.kind, body.Kind)
			assert.Equal(t, tt.status, body.Status)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestPlotRecording(t *testing.T) {
	h := newTestRouter(t, map[string]string{"sub-01_ses-1_eyesopen.csv": recordingCSV})

	rec := get(t, h, "/api/recordings/plot.png?subject=sub-01&condition=ses-1&task=eyesopen&channels=Fp1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(320, 200), img.Bounds().Size())

	rec = get(t, h, "/api/recordings/plot.png?subject=01&condition=ses-1&task=eyesopen&channels=")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, explorer.KindEmptySelection, decodeError(t, rec).Kind)
}

func TestPlotRecording_NoSamples(t *testing.T) {
	h := newTestRouter(t, map[string]string{
		"sub-01_ses-1_eyesopen.csv":   "Time,Fp1,Fz\n",
		"sub-01_ses-2_eyesclosed.csv": "Time,Fp1,Fz\n0,,1\n0.5,,2\n",
	})

	for _, target := range []string{
		"/api/recordings/plot.png?subject=01&condition=ses-1&task=eyesopen&channels=Fp1",
		"/api/recordings/plot.png?subject=01&condition=ses-2&task=eyesclosed&channels=Fp1",
	} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		img, err := png.Decode(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, image.Pt(320, 200), img.Bounds().Size())
	}
}

func TestElectrodeOverlay(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := get(t, h, "/api/electrodes/overlay.png?electrodes=FP1,AF3")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(850, 655), img.Bounds().Size())

	rec = get(t, h, "/api/electrodes/overlay.png")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, h, "/api/electrodes/overlay.png?electrodes=Cz")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptions(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := get(t, h, "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts explorer.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Len(t, opts.Conditions, 2)
	assert.Len(t, opts.Tasks, 2)
	assert.Len(t, opts.Electrodes, 5)
}

func TestHealthAndDebugStats(t *testing.T) {
	h := newTestRouter(t, map[string]string{"sub-01_ses-1_eyesopen.csv": recordingCSV})

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	get(t, h, "/api/recordings?subject=01&condition=NS&task=eyesopen")

	rec = get(t, h, "/debug/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Store    string           `json:"store"`
		Resolver map[string]int64 `json:"resolver"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "none", stats.Store)
	assert.Equal(t, int64(1), stats.Resolver["local_hits"])
}

func TestMiddleware(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := get(t, h, "/healthz")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/subjects", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, explorer.KindInternal, decodeError(t, rec).Kind)
}
