package notification

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskhive/config"

	"github.com/gorilla/websocket"
)

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    bool
	}{
		{"no list", "", "https://evil.example", true},
		{"wildcard", "*", "https://evil.example", true},
		{"listed", "https://app.taskhive.io,https://admin.taskhive.io", "https://admin.taskhive.io", true},
		{"case differs", "https://app.taskhive.io", "https://APP.taskhive.io", true},
		{"not listed", "https://app.taskhive.io", "https://evil.example", false},
		{"no origin header", "https://app.taskhive.io", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.AppConfig.CORSOrigins = tt.allowed
			t.Cleanup(func() { config.AppConfig.CORSOrigins = "" })

			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestHandshakeRejectsForeignOrigin(t *testing.T) {
	config.AppConfig.CORSOrigins = "https://app.taskhive.io"
	t.Cleanup(func() { config.AppConfig.CORSOrigins = "" })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err == nil {
			conn.Close()
		}
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		t.Fatal("expected the handshake to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %+v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://app.taskhive.io"}})
	if err != nil {
		t.Fatalf("allowed origin refused: %v", err)
	}
	conn.Close()
}
