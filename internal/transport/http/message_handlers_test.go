package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

func seedHistory(t *testing.T, env *testEnv) {
	t.Helper()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	msgs := []*store.Message{
		{RoomID: 42, SenderID: 1, Content: "first", CreatedAt: base},
		{RoomID: 42, SenderID: 2, Content: "second", CreatedAt: base.Add(time.Minute)},
		{RoomID: 42, SenderID: 1, Content: "third", CreatedAt: base.Add(2 * time.Minute)},
		{RoomID: 7, SenderID: 1, Content: "elsewhere", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, m := range msgs {
		if err := env.store.SaveMessage(ctx, m); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

func getJSON(t *testing.T, env *testEnv, path string, out any) *http.Response {
	t.Helper()

	resp, err := env.ts.Client().Get(env.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func TestListChatroomMessages(t *testing.T) {
	env := startTestServer(t)
	seedHistory(t, env)

	var messages []MessageResponse
	resp := getJSON(t, env, "/v1/api/messages/chatroom/42", &messages)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(messages))
	}
	if messages[0].Content != "first" || messages[2].Content != "third" {
		t.Fatalf("wrong order: first=%q last=%q", messages[0].Content, messages[2].Content)
	}
	if messages[0].ChatroomID != 42 || messages[0].SenderID != 1 {
		t.Fatalf("unexpected message fields: %+v", messages[0])
	}

	var recent []MessageResponse
	getJSON(t, env, "/v1/api/messages/chatroom/42/recent", &recent)
	if len(recent) != 3 || recent[0].Content != "third" {
		t.Fatalf("unexpected recent order: %+v", recent)
	}
}

func TestListMessagesAroundTimestamp(t *testing.T) {
	env := startTestServer(t)
	seedHistory(t, env)

	var after []MessageResponse
	resp := getJSON(t, env, "/v1/api/messages/chatroom/42/after?timestamp=2025-06-01T10:00:30", &after)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(after) != 2 || after[0].Content != "second" {
		t.Fatalf("unexpected after result: %+v", after)
	}

	var before []MessageResponse
	getJSON(t, env, "/v1/api/messages/chatroom/42/before?timestamp=2025-06-01T10:01:30", &before)
	if len(before) != 2 || before[0].Content != "second" {
		t.Fatalf("unexpected before result: %+v", before)
	}

	resp = getJSON(t, env, "/v1/api/messages/chatroom/42/after?timestamp=yesterday", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad timestamp status = %d, want 400", resp.StatusCode)
	}
}

func TestCountAndLatest(t *testing.T) {
	env := startTestServer(t)
	seedHistory(t, env)

	var count CountResponse
	getJSON(t, env, "/v1/api/messages/chatroom/42/count", &count)
	if count.Count != 3 {
		t.Fatalf("count = %d, want 3", count.Count)
	}

	var latest MessageResponse
	getJSON(t, env, "/v1/api/messages/chatroom/42/latest", &latest)
	if latest.Content != "third" {
		t.Fatalf("latest = %+v", latest)
	}

	resp := getJSON(t, env, "/v1/api/messages/chatroom/99/latest", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("latest in empty room status = %d, want 404", resp.StatusCode)
	}
}

func TestSenderAndSearchQueries(t *testing.T) {
	env := startTestServer(t)
	seedHistory(t, env)

	var global []MessageResponse
	getJSON(t, env, "/v1/api/messages/sender/1", &global)
	if len(global) != 3 {
		t.Fatalf("global sender messages = %d, want 3", len(global))
	}

	var scoped []MessageResponse
	getJSON(t, env, "/v1/api/messages/chatroom/42/sender/1", &scoped)
	if len(scoped) != 2 {
		t.Fatalf("scoped sender messages = %d, want 2", len(scoped))
	}

	var hits []MessageResponse
	getJSON(t, env, "/v1/api/messages/chatroom/42/search?keyword=ir", &hits)
	// Substring match: "first" and "third".
	if len(hits) != 2 {
		t.Fatalf("search hits = %d, want 2", len(hits))
	}

	resp := getJSON(t, env, "/v1/api/messages/chatroom/42/search", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing keyword status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteEndpoints(t *testing.T) {
	env := startTestServer(t)
	seedHistory(t, env)
	ctx := context.Background()

	req, err := http.NewRequest(http.MethodDelete, env.ts.URL+"/v1/api/messages/chatroom/42/sender/1", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("delete by sender: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	count, err := env.store.CountByRoom(ctx, 42)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after sender delete = %d, want 1", count)
	}

	req, err = http.NewRequest(http.MethodDelete, env.ts.URL+"/v1/api/messages/chatroom/42", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err = env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("delete room: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	count, err = env.store.CountByRoom(ctx, 42)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after room delete = %d, want 0", count)
	}

	// The other room's history survives both deletes.
	other, err := env.store.CountByRoom(ctx, 7)
	if err != nil {
		t.Fatalf("count other room: %v", err)
	}
	if other != 1 {
		t.Fatalf("other room count = %d, want 1", other)
	}
}
