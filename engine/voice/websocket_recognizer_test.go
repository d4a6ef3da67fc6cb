package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcriptServer(t *testing.T, frames ...string) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketRecognizerPlainText(t *testing.T) {
	rec := NewWebsocketRecognizer(transcriptServer(t, "  ", "Rotate Faster"))
	got, err := rec.Recognize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rotate Faster", got)
}

func TestWebsocketRecognizerJSON(t *testing.T) {
	rec := NewWebsocketRecognizer(transcriptServer(t, `{"transcript":"ghost off"}`))
	got, err := rec.Recognize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ghost off", got)
}

func TestWebsocketRecognizerCancel(t *testing.T) {
	rec := NewWebsocketRecognizer(transcriptServer(t))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := rec.Recognize(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
