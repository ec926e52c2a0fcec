package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hirehub/globals"
	"hirehub/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHubRegisterDispatchUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	client := &Client{Send: make(chan []byte, 10), UserID: "user1"}
	other := &Client{Send: make(chan []byte, 10), UserID: "user2"}
	hub.register <- client
	hub.register <- other

	evt := models.Event{Type: models.EventApplicationStatus, JobID: "job1", RecipientID: "user1", Status: models.StatusInterview}
	hub.Dispatch(evt)
	hub.Dispatch(models.Event{Type: models.EventJobCreated, JobID: "job2"})

	select {
	case got := <-client.Send:
		var decoded models.Event
		require.NoError(t, json.Unmarshal(got, &decoded))
		assert.Equal(t, models.StatusInterview, decoded.Status)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for notification")
	}
	assert.Empty(t, other.Send)

	hub.unregister <- client
	hub.unregister <- client
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHubStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := &Client{Send: make(chan []byte, 1), UserID: "u"}
	hub.register <- client
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-client.Send
	assert.False(t, open)
}

func TestWebsocketDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	user := &models.User{ID: primitive.NewObjectID(), Name: "emma"}
	withUser := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			next(w, r.WithContext(context.WithValue(r.Context(), globals.UserKey, user)), ps)
		}
	}
	router := httprouter.New()
	router.GET("/ws", withUser(hub.Handler([]string{"http://localhost:5173"})))
	router.GET("/anon", hub.Handler(nil))
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/anon", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"/ws", header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws", http.Header{"Origin": {"http://localhost:5173"}})
	require.NoError(t, err)
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Dispatch(models.Event{Type: models.EventApplicationStatus, RecipientID: user.ID.Hex(), Status: models.StatusHired})
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var got models.Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, models.StatusHired, got.Status)
}

func TestHubEmitDispatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	client := &Client{Send: make(chan []byte, 1), UserID: "recruiter"}
	hub.register <- client
	hub.Emit(ctx, models.Event{Type: models.EventApplicationCreated, RecipientID: "recruiter"})

	select {
	case got := <-client.Send:
		assert.Contains(t, string(got), models.EventApplicationCreated)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for notification")
	}
}
