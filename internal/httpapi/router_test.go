package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sllt/railbot/internal/bot"
	"github.com/sllt/railbot/internal/config"
	"github.com/sllt/railbot/internal/session"
	"github.com/sllt/railbot/internal/ticket"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := []map[string]any{{
			"trainumber":    "G1",
			"traintype":     "high-speed",
			"departstation": "Beijing",
			"arrivestation": "Shanghai",
			"departtime":    "08:00",
			"arrivetime":    "12:28",
			"runtime":       "4h28m",
			"ticket_info": []map[string]any{
				{"seatname": "second class", "seatprice": "553", "seatinventory": 20},
			},
		}}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "data": data, "msg": "success"})
	}))
	t.Cleanup(srv.Close)

	engine := bot.New(
		ticket.NewParser(nil),
		ticket.NewClient(srv.URL, time.Second, nil, nil),
		ticket.NewRefiner(nil, nil),
		session.NewStore(),
		nil,
		10*time.Minute,
		nil,
	)
	return NewRouter(engine, config.Config{Env: "test", Port: "8080"}, nil)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		return w, envelope{}
	}
	return w, env
}

func TestPing(t *testing.T) {
	r := testRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, env.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHelp(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/help", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "+next page")
}

func TestPostMessageQuery(t *testing.T) {
	r := testRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/v1/messages", gin.H{
		"conversation_id": "c1",
		"content":         "high-speed Beijing Shanghai 2024-06-05",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, env.Code)

	var data struct {
		ConversationID string `json:"conversation_id"`
		Reply          string `json:"reply"`
		IsError        bool   `json:"is_error"`
		Handled        bool   `json:"handled"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "c1", data.ConversationID)
	require.True(t, data.Handled)
	require.False(t, data.IsError)
	require.Contains(t, data.Reply, "【G1】")
}

func TestPostMessageMintsConversationID(t *testing.T) {
	r := testRouter(t)

	_, env := doJSON(t, r, http.MethodPost, "/v1/messages", gin.H{"content": "hello"})
	var data struct {
		ConversationID string `json:"conversation_id"`
		Handled        bool   `json:"handled"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.ConversationID)
	require.False(t, data.Handled)
}

func TestPostMessageMissingContent(t *testing.T) {
	r := testRouter(t)
	w, env := doJSON(t, r, http.MethodPost, "/v1/messages", gin.H{"conversation_id": "c1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 10001, env.Code)
}

func TestRouteNotFound(t *testing.T) {
	r := testRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 40400, env.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	r := testRouter(t)
	w, env := doJSON(t, r, http.MethodDelete, "/v1/messages", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, 40500, env.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", fmt.Sprintf("req-%d", 42))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
