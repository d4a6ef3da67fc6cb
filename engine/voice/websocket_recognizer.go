package voice

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"
)

// transcriptMessage is the JSON frame a transcription server may send.
type transcriptMessage struct {
	Transcript string `json:"transcript"`
}

type websocketRecognizer struct {
	url    string
	dialer *websocket.Dialer
}

// NewWebsocketRecognizer creates a Recognizer that dials a transcription server once per session
// and takes the first text frame as the transcript. A frame is either plain text or a JSON
// object with a "transcript" field.
//
// Parameters:
//   - url: the ws:// or wss:// address of the server
//
// Returns:
//   - Recognizer: the recognizer; unsupported when url is empty
func NewWebsocketRecognizer(url string) Recognizer {
	return &websocketRecognizer{url: url, dialer: websocket.DefaultDialer}
}

func (w *websocketRecognizer) Supported() bool {
	return w.url != ""
}

func (w *websocketRecognizer) Recognize(ctx context.Context) (string, error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	// ReadMessage does not observe ctx; closing the connection unblocks it.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		text := parseTranscript(msg)
		if text == "" {
			continue
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return text, nil
	}
}

func parseTranscript(msg []byte) string {
	trimmed := strings.TrimSpace(string(msg))
	if strings.HasPrefix(trimmed, "{") {
		var tm transcriptMessage
		if err := json.Unmarshal([]byte(trimmed), &tm); err == nil {
			return strings.TrimSpace(tm.Transcript)
		}
	}
	return trimmed
}
