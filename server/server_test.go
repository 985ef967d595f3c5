package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/docprep/internal/models"
	"github.com/xhad/docprep/internal/types"
	"github.com/xhad/docprep/pkg/corrector"
	"github.com/xhad/docprep/server"
)

func newTestServer(t *testing.T, c types.Corrector) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)

	s := server.New(server.Config{
		Corrector: c,
		Correction: corrector.OrchestratorConfig{
			BatchPause: time.Millisecond,
			RetryDelay: time.Millisecond,
		},
		Logger: logger,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func upper() types.Corrector {
	return types.CorrectorFunc(func(ctx context.Context, text string) (string, error) {
		return strings.ToUpper(text), nil
	})
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func intPtr(v int) *int { return &v }

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestChunk(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/chunk", server.ChunkRequest{
		Text:         "제1조 내용...\n제2조 내용...",
		DocType:      "legal",
		MaxChunkSize: intPtr(10),
		Separator:    "<<SEP>>",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result models.PreprocessResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"제1조 내용.", "제2조 내용."}, result.Chunks)
	assert.Equal(t, "제1조 내용.\n\n<<SEP>>\n\n제2조 내용.", result.ProcessedText)
	assert.Equal(t, 2, result.Stats.ChunkCount)
}

func TestChunk_HTML(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/chunk", server.ChunkRequest{
		Text:    "<body><table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table></body>",
		DocType: "tabular",
		Format:  "html",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.PreprocessResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"### Table 1\n\n| a | b |\n| --- | --- |\n| 1 | 2 |"}, result.Chunks)
}

func TestChunk_Validation(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body interface{}
	}{
		{"blank text", server.ChunkRequest{Text: "  \n "}},
		{"unknown doc type", server.ChunkRequest{Text: "x", DocType: "poem"}},
		{"unknown format", server.ChunkRequest{Text: "x", Format: "pdf"}},
		{"negative size", server.ChunkRequest{Text: "x", MaxChunkSize: intPtr(-5)}},
		{"negative overlap", server.ChunkRequest{Text: "x", OverlapSize: intPtr(-1)}},
		{"overlap not below size", server.ChunkRequest{Text: "x", MaxChunkSize: intPtr(10), OverlapSize: intPtr(10)}},
		{"not json", "just a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/v1/chunk", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "validation", body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestCorrect(t *testing.T) {
	srv := newTestServer(t, upper())

	resp := postJSON(t, srv.URL+"/v1/correct", server.CorrectRequest{
		Text:      "first line\nsecond line",
		MaxLength: 11,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body server.CorrectResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"FIRST LINE", "SECOND LINE"}, body.Segments)
}

func TestCorrect_Passthrough(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/v1/correct", server.CorrectRequest{Text: "keep me"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body server.CorrectResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"keep me"}, body.Segments)
}

func TestCorrect_Validation(t *testing.T) {
	srv := newTestServer(t, upper())

	for _, req := range []server.CorrectRequest{
		{Text: ""},
		{Text: "x", MaxLength: 501},
		{Text: "x", MaxLength: -1},
	} {
		resp := postJSON(t, srv.URL+"/v1/correct", req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocket_Correct(t *testing.T) {
	srv := newTestServer(t, upper())
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(server.Message{
		Type:    "correct",
		Content: "aa\nbb\ncc",
		Data:    map[string]int{"maxLength": 3},
	}))

	var progress []server.Message
	var result server.Message
	for {
		var msg server.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "progress" {
			progress = append(progress, msg)
			continue
		}
		result = msg
		break
	}

	require.Equal(t, "result", result.Type)
	data := result.Data.(map[string]interface{})
	assert.Equal(t, []interface{}{"AA", "BB", "CC"}, data["segments"])
	assert.NotEmpty(t, data["jobId"])

	require.Len(t, progress, 3)
	for _, msg := range progress {
		pd := msg.Data.(map[string]interface{})
		assert.Equal(t, data["jobId"], pd["jobId"])
		assert.Equal(t, float64(3), pd["total"])
	}
}

func TestWebSocket_ChunkAndErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(server.Message{
		Type:    "chunk",
		Content: "Hello world.",
		Data:    map[string]string{"docType": "generic"},
	}))
	var msg server.Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "result", msg.Type)
	result := msg.Data.(map[string]interface{})["result"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Hello world."}, result["chunks"])

	require.NoError(t, conn.WriteJSON(server.Message{Type: "chunk", Content: " "}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, conn.WriteJSON(server.Message{Type: "translate", Content: "x"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Content, "unknown message type")
}
