package websocket

import (
	"bytes"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krimson/eeg-explorer/viewer/internal/channel"
	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/explorer"
	"github.com/Krimson/eeg-explorer/viewer/internal/overlay"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "sub-01_ses-1_eyesopen.csv"),
		[]byte("Time,Fp1,Fz,O1\n0,1,2,3\n0.5,4,5,6\n"), 0o644))

	cache, err := dataset.NewLocalCache(dir)
	require.NoError(t, err)
	resolver := dataset.NewResolver(cache, nil, time.Second, zerolog.Nop())

	table, err := overlay.LoadTable("")
	require.NoError(t, err)
	layout, err := overlay.NewLayout(table, image.NewNRGBA(image.Rect(0, 0, 850, 655)))
	require.NoError(t, err)

	hub := NewHub(explorer.NewService(resolver, layout, 320, 200, zerolog.Nop()), zerolog.Nop())
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, srv
}

func connect(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var ready Outbound
	readJSON(t, conn, &ready)
	require.Equal(t, TypeReady, ready.Type)
	require.NotEmpty(t, ready.ClientID)
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(v))
}

func TestHub_Explore(t *testing.T) {
	_, srv := newTestHub(t)
	conn := connect(t, srv)

	require.NoError(t, conn.WriteJSON(Inbound{
		Type: TypeExplore,
		Request: explorer.Request{
			Subject: "01", Condition: "NS", Task: "Eyes Open",
			Channels: []string{"O1"}, ChannelsChosen: true,
		},
	}))

	var out Outbound
	readJSON(t, conn, &out)
	require.Equal(t, TypeView, out.Type)
	require.NotNil(t, out.View)
	assert.Equal(t, channel.StatePlotted, out.View.Result.State)
	assert.Equal(t, []string{"O1"}, out.View.SelectedChannels)
}

func TestHub_Overlay(t *testing.T) {
	_, srv := newTestHub(t)
	conn := connect(t, srv)

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeOverlay, Electrodes: []string{"FZ"}}))

	var out Outbound
	readJSON(t, conn, &out)
	require.Equal(t, TypeOverlay, out.Type)

	img, err := png.Decode(bytes.NewReader(out.PNG))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(850, 655), img.Bounds().Size())
}

func TestHub_NoticesKeepConnectionOpen(t *testing.T) {
	_, srv := newTestHub(t)
	conn := connect(t, srv)

	require.NoError(t, conn.WriteJSON(Inbound{
		Type:    TypeExplore,
		Request: explorer.Request{Subject: "42", Condition: "NS", Task: "Eyes Open"},
	}))
	var out Outbound
	readJSON(t, conn, &out)
	require.Equal(t, TypeNotice, out.Type)
	assert.Equal(t, explorer.KindUnknownSubject, out.Notice.Kind)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	out = Outbound{}
	readJSON(t, conn, &out)
	assert.Equal(t, TypeNotice, out.Type)

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeSubjects}))
	out = Outbound{}
	readJSON(t, conn, &out)
	assert.Equal(t, TypeSubjects, out.Type)
	assert.Equal(t, []string{"01"}, out.Subjects)
}

func TestHub_CloseAll(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := connect(t, srv)

	assert.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}
