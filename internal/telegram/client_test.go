package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/launchtrack/timeclock/internal/telegram"
)

func TestUpdatesDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bottok/getUpdates") {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"from":{"id":42,"first_name":"Shane"},
			 "chat":{"id":42},"location":{"latitude":52.5,"longitude":13.4}}},
			{"update_id":8,"callback_query":{"id":"cb1","from":{"id":42},"data":"clock_in",
			 "message":{"message_id":2,"chat":{"id":42}}}}
		]}`))
	}))
	defer srv.Close()

	c := telegram.NewWithHTTP(srv.Client(), srv.URL, "tok")
	updates, err := c.Updates(context.Background(), 0)
	if err != nil {
		t.Fatalf("Updates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("len = %d", len(updates))
	}
	loc := updates[0].Message.Location
	if loc == nil || loc.Latitude != 52.5 || loc.Longitude != 13.4 {
		t.Errorf("location = %+v", loc)
	}
	if updates[1].CallbackQuery.Data != "clock_in" {
		t.Errorf("callback data = %q", updates[1].CallbackQuery.Data)
	}
}

func TestSendMessageKeyboardPayload(t *testing.T) {
	var payload map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := telegram.NewWithHTTP(srv.Client(), srv.URL, "tok")
	kb := &telegram.InlineKeyboard{InlineKeyboard: [][]telegram.InlineButton{
		{{Text: "Clock In", CallbackData: "clock_in"}},
	}}
	if err := c.SendMessage(context.Background(), 42, "hello", kb); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if string(payload["chat_id"]) != "42" {
		t.Errorf("chat_id = %s", payload["chat_id"])
	}
	if !strings.Contains(string(payload["reply_markup"]), `"callback_data":"clock_in"`) {
		t.Errorf("reply_markup = %s", payload["reply_markup"])
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	c := telegram.NewWithHTTP(srv.Client(), srv.URL, "bad")
	err := c.SendMessage(context.Background(), 1, "x", nil)
	if err == nil || !strings.Contains(err.Error(), "Unauthorized") {
		t.Errorf("err = %v", err)
	}
}

func TestFileData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/getFile") {
			w.Write([]byte(`{"ok":true,"result":{"file_path":"voice/note.ogg"}}`))
			return
		}
		if strings.HasSuffix(r.URL.Path, "/file/bottok/voice/note.ogg") {
			w.Write([]byte("oggdata"))
			return
		}
		t.Errorf("unexpected path %s", r.URL.Path)
	}))
	defer srv.Close()

	c := telegram.NewWithHTTP(srv.Client(), srv.URL, "tok")
	data, err := c.FileData(context.Background(), "f1")
	if err != nil {
		t.Fatalf("FileData: %v", err)
	}
	if string(data) != "oggdata" {
		t.Errorf("data = %q", data)
	}
}
