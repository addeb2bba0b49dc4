package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"svcboard/internal/model"
)

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		site   string
		want   bool
	}{
		{name: "no browser headers", want: true},
		{name: "same host", origin: "http://127.0.0.1:7788", want: true},
		{name: "same origin fetch", origin: "http://127.0.0.1:7788", site: "same-origin", want: true},
		{name: "typed url", site: "none", want: true},
		{name: "foreign origin", origin: "https://evil.example", want: false},
		{name: "other port", origin: "http://127.0.0.1:3000", want: false},
		{name: "opaque origin", origin: "null", want: false},
		{name: "cross site fetch", site: "cross-site", want: false},
		{name: "same site other origin", site: "same-site", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "http://127.0.0.1:7788/api/bulk/stop", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if tt.site != "" {
				r.Header.Set("Sec-Fetch-Site", tt.site)
			}
			if got := sameOrigin(r); got != tt.want {
				t.Fatalf("sameOrigin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrossOriginMutationRefused(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/bulk/stop", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Content-Type", "text/plain")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("cross-origin bulk stop: got %d", resp.StatusCode)
	}
	if e, _ := env.mem.Registry().Get("postgresql"); e.Status != model.StatusRunning {
		t.Fatalf("postgresql should still be running, got %s", e.Status)
	}

	req, err = http.NewRequest(http.MethodPost, env.srv.URL+"/api/refresh", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", env.srv.URL)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("same-origin refresh: got %d", resp.StatusCode)
	}

	if code, _ := env.do(t, http.MethodGet, "/api/view", ""); code != http.StatusOK {
		t.Fatalf("view: got %d", code)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/api/ws"

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", resp)
	}

	header.Set("Origin", env.srv.URL)
	conn, _, err = websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("same-origin dial: %v", err)
	}
	conn.Close()
}
