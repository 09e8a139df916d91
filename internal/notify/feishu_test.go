package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendCard_PostsInteractiveCard(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewFeishuNotifier(srv.URL, "", "")
	err := f.SendCard(context.Background(), Card{Title: "【行情播报】", Color: "red", Body: "**test**"})
	if err != nil {
		t.Fatalf("SendCard: %v", err)
	}

	if got["msg_type"] != "interactive" {
		t.Errorf("expected msg_type interactive, got %v", got["msg_type"])
	}
	card := got["card"].(map[string]interface{})
	header := card["header"].(map[string]interface{})
	if header["template"] != "red" {
		t.Errorf("expected red template, got %v", header["template"])
	}
}

func TestSendCard_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFeishuNotifier(srv.URL, "", "")
	if err := f.SendCard(context.Background(), Card{Title: "t"}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestReply_NoCredentialsIsNoOp(t *testing.T) {
	f := NewFeishuNotifier("http://unused", "", "")
	if err := f.Reply(context.Background(), "om_x", "hi"); err != nil {
		t.Fatalf("expected nil without credentials, got %v", err)
	}
}

func TestReply_FetchesAndCachesToken(t *testing.T) {
	var tokenCalls, replyCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tenant_access_token/internal"):
			atomic.AddInt32(&tokenCalls, 1)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0, "tenant_access_token": "tok-1", "expire": 7200,
			})
		case strings.Contains(r.URL.Path, "/im/v1/messages/"):
			atomic.AddInt32(&replyCalls, 1)
			if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
				t.Errorf("bad auth header %q", auth)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	f := NewFeishuNotifier("http://unused", "app-id", "app-secret")
	f.apiBase = srv.URL

	for i := 0; i < 3; i++ {
		if err := f.Reply(context.Background(), "om_abc", "pong"); err != nil {
			t.Fatalf("Reply %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Errorf("expected 1 token fetch, got %d", n)
	}
	if n := atomic.LoadInt32(&replyCalls); n != 3 {
		t.Errorf("expected 3 replies, got %d", n)
	}
}

func TestReply_RefreshesExpiredToken(t *testing.T) {
	var tokenCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tenant_access_token/internal") {
			n := atomic.AddInt32(&tokenCalls, 1)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 0, "tenant_access_token": "tok", "expire": int(n) * 1000,
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewFeishuNotifier("http://unused", "app-id", "app-secret")
	f.apiBase = srv.URL

	clock := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return clock }

	if err := f.Reply(context.Background(), "om_1", "a"); err != nil {
		t.Fatal(err)
	}
	// First token lives 1000s minus the 300s safety margin.
	clock = clock.Add(800 * time.Second)
	if err := f.Reply(context.Background(), "om_1", "b"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 2 {
		t.Errorf("expected refresh after expiry, got %d token fetches", n)
	}
}

func TestReply_TokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 99991663, "msg": "app not found"})
	}))
	defer srv.Close()

	f := NewFeishuNotifier("http://unused", "app-id", "bad-secret")
	f.apiBase = srv.URL

	if err := f.Reply(context.Background(), "om_1", "a"); err == nil {
		t.Fatal("expected error on rejected token")
	}
}
