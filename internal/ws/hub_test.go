package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPresenceAddRemoveCount(t *testing.T) {
	p := NewPresenceTracker()

	c1 := NewClient(nil, "s1")
	c2 := NewClient(nil, "s1")
	c3 := NewClient(nil, "s2")

	p.Add("s1", c1)
	p.Add("s1", c2)
	p.Add("s2", c3)

	if p.Count("s1") != 2 {
		t.Errorf("expected 2 connections for s1, got %d", p.Count("s1"))
	}
	if p.Count("s2") != 1 {
		t.Errorf("expected 1 connection for s2, got %d", p.Count("s2"))
	}

	p.Remove("s1", c1)
	if p.Count("s1") != 1 {
		t.Errorf("expected 1 connection after remove, got %d", p.Count("s1"))
	}

	// Removing an absent connection is a no-op.
	p.Remove("s1", c1)
	if p.Count("s1") != 1 {
		t.Errorf("expected count unchanged after duplicate remove, got %d", p.Count("s1"))
	}
}

func TestPresenceDropsEmptySets(t *testing.T) {
	p := NewPresenceTracker()
	c := NewClient(nil, "s1")

	p.Add("s1", c)
	p.Remove("s1", c)

	p.mu.RLock()
	_, exists := p.sessions["s1"]
	p.mu.RUnlock()

	if exists {
		t.Error("expected per-session set to be dropped once empty")
	}
}

func TestPresenceSnapshotIsACopy(t *testing.T) {
	p := NewPresenceTracker()
	c1 := NewClient(nil, "s1")
	c2 := NewClient(nil, "s1")
	p.Add("s1", c1)
	p.Add("s1", c2)

	snapshot := p.Snapshot("s1")
	if len(snapshot) != 2 {
		t.Fatalf("expected snapshot of 2, got %d", len(snapshot))
	}

	// Mutating presence after the snapshot does not affect it.
	p.Remove("s1", c1)
	if len(snapshot) != 2 {
		t.Error("snapshot changed after presence mutation")
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	p := NewPresenceTracker()
	hub := NewHub(p)

	sender := NewClient(nil, "s1")
	peer := NewClient(nil, "s1")
	p.Add("s1", sender)
	p.Add("s1", peer)

	hub.Broadcast("s1", NewMessage(MessageTypePong, "", nil), sender)

	if data := receiveWithTimeout(t, peer, 100*time.Millisecond); data == nil {
		t.Error("peer did not receive broadcast")
	}
	if data := receiveWithTimeout(t, sender, 100*time.Millisecond); data != nil {
		t.Error("sender received its own broadcast")
	}
}

func TestBroadcastPrunesDeadConnections(t *testing.T) {
	p := NewPresenceTracker()
	hub := NewHub(p)

	live := NewClient(nil, "s1")
	dead := NewClient(nil, "s1")
	p.Add("s1", live)
	p.Add("s1", dead)

	dead.Close()

	hub.Broadcast("s1", NewMessage(MessageTypePong, "", nil), nil)

	if p.Count("s1") != 1 {
		t.Errorf("expected dead connection pruned, count=%d", p.Count("s1"))
	}
	if data := receiveWithTimeout(t, live, 100*time.Millisecond); data == nil {
		t.Error("live peer did not receive broadcast despite dead peer in set")
	}
}

func TestBroadcastMessageShape(t *testing.T) {
	p := NewPresenceTracker()
	hub := NewHub(p)

	peer := NewClient(nil, "s1")
	p.Add("s1", peer)

	hub.Broadcast("s1", NewMessage(MessageTypeUserJoined, "u1", UserJoinedPayload{
		Name:             "Alice",
		ParticipantCount: 1,
	}), nil)

	data := receiveWithTimeout(t, peer, 100*time.Millisecond)
	if data == nil {
		t.Fatal("no message received")
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if msg.Type != MessageTypeUserJoined || msg.UserID != "u1" {
		t.Errorf("unexpected envelope: type=%s userId=%s", msg.Type, msg.UserID)
	}
	if msg.Timestamp == "" {
		t.Error("missing timestamp")
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}

	var payload UserJoinedPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Name != "Alice" || payload.ParticipantCount != 1 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestClientSendAfterClose(t *testing.T) {
	c := NewClient(nil, "s1")
	c.Close()

	if err := c.Send([]byte("x")); err != ErrClientClosed {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
	if !c.IsClosed() {
		t.Error("expected client to report closed")
	}
}

func TestClientSendOverflowClosesClient(t *testing.T) {
	c := NewClient(nil, "s1")

	// Fill the outbound queue without a consumer.
	var err error
	for i := 0; i < 257; i++ {
		err = c.Send([]byte("x"))
		if err != nil {
			break
		}
	}

	if err != ErrClientClosed {
		t.Errorf("expected overflow to close the client, got %v", err)
	}
	if !c.IsClosed() {
		t.Error("expected client closed after overflow")
	}
}

func receiveWithTimeout(t *testing.T, client *Client, timeout time.Duration) []byte {
	t.Helper()
	select {
	case data := <-client.SendChan():
		return data
	case <-time.After(timeout):
		return nil
	}
}
