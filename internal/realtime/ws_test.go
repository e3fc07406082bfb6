package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskhub/internal/auth"
	"taskhub/internal/models"
	"taskhub/internal/repo"
)

func wsTestSetup(t *testing.T) (*Hub, repo.Store, auth.Tokens, *httptest.Server) {
	t.Helper()
	store := repo.NewMemory()
	tokens := auth.Tokens{
		AccessSecret:  []byte("ws-test-access"),
		RefreshSecret: []byte("ws-test-refresh"),
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	}
	hub := NewHub(NewRegistry())
	srv := httptest.NewServer(Handler(hub, store, tokens, ""))
	t.Cleanup(srv.Close)
	return hub, store, tokens, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHandshakeRejectsMissingOrBadToken(t *testing.T) {
	_, _, _, srv := wsTestSetup(t)

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "?token=garbage")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", resp.StatusCode)
	}
}

func TestHandshakeRejectsVanishedUser(t *testing.T) {
	_, _, tokens, srv := wsTestSetup(t)

	// token is valid but its user was never stored
	token, err := tokens.GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get(srv.URL + "?token=" + token)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAnnounceThenAddressedDelivery(t *testing.T) {
	hub, store, tokens, srv := wsTestSetup(t)

	u, err := store.CreateUser(context.Background(), models.User{
		Username: "ivo", Email: "ivo@example.com", Role: models.RoleIntern,
	})
	if err != nil {
		t.Fatal(err)
	}
	token, err := tokens.GenerateAccessToken(u.ID)
	if err != nil {
		t.Fatal(err)
	}

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	if err := ws.WriteJSON(map[string]string{"event": "announce"}); err != nil {
		t.Fatal(err)
	}
	// wait for the read loop to process the announce
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := hub.registry.Lookup(u.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("announce never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.NotifyUser(u.ID, models.NotifySuccess, "Task created successfully", u.ID)

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Event string              `json:"event"`
		Data  models.Notification `json:"data"`
	}
	if err := ws.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Event != "notification" || frame.Data.Message != "Task created successfully" {
		t.Errorf("frame = %+v", frame)
	}
}

func TestBroadcastWithoutAnnounce(t *testing.T) {
	hub, store, tokens, srv := wsTestSetup(t)

	u, err := store.CreateUser(context.Background(), models.User{
		Username: "ana", Email: "ana@example.com", Role: models.RoleAssociate,
	})
	if err != nil {
		t.Fatal(err)
	}
	token, err := tokens.GenerateAccessToken(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	// the connection is in the broadcast set as soon as it is accepted;
	// give the server a moment to register it
	time.Sleep(50 * time.Millisecond)
	hub.TaskUpdated(models.ResolvedTask{Title: "broadcast test"})

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Event string `json:"event"`
		Data  struct {
			Task models.ResolvedTask `json:"task"`
		} `json:"data"`
	}
	if err := ws.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Event != "taskUpdated" || frame.Data.Task.Title != "broadcast test" {
		t.Errorf("frame = %+v", frame)
	}
}
