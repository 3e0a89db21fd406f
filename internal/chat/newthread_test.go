package chat

import (
	"path/filepath"
	"testing"
)

func TestNewThreadAgentStore_AllocateStartsAt1000(t *testing.T) {
	store := NewNewThreadAgentStore(filepath.Join(t.TempDir(), "new-thread-agents.json"))

	agent, err := store.Allocate("do a thing", "chat1", "user1", 1000)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if agent.AgentCode != NewThreadAgentCodeStart {
		t.Fatalf("expected first agent code %d, got %d", NewThreadAgentCodeStart, agent.AgentCode)
	}
	if agent.Status != NewThreadStatusRunning {
		t.Fatalf("expected running status, got %q", agent.Status)
	}

	second, err := store.Allocate("another thing", "chat1", "user1", 2000)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if second.AgentCode != NewThreadAgentCodeStart+1 {
		t.Fatalf("expected monotonic code %d, got %d", NewThreadAgentCodeStart+1, second.AgentCode)
	}
}

func TestNewThreadAgentStore_UpdateResponseAndGet(t *testing.T) {
	store := NewNewThreadAgentStore(filepath.Join(t.TempDir(), "new-thread-agents.json"))
	agent, _ := store.Allocate("task", "chat1", "user1", 1000)

	if err := store.UpdateResponse(agent.AgentCode, "done", true, 2000); err != nil {
		t.Fatalf("UpdateResponse: %v", err)
	}

	got, ok := store.Get(agent.AgentCode)
	if !ok {
		t.Fatal("expected agent to be found")
	}
	if got.Status != NewThreadStatusCompleted {
		t.Fatalf("expected completed status, got %q", got.Status)
	}
	if got.LastResponse == nil || *got.LastResponse != "done" {
		t.Fatalf("expected last response %q, got %v", "done", got.LastResponse)
	}
}

func TestNewThreadAgentStore_ListFiltersByChat(t *testing.T) {
	store := NewNewThreadAgentStore(filepath.Join(t.TempDir(), "new-thread-agents.json"))
	store.Allocate("a", "chat1", "u", 1000)
	store.Allocate("b", "chat2", "u", 2000)

	list := store.List("chat1")
	if len(list) != 1 || list[0].ChatID != "chat1" {
		t.Fatalf("expected only chat1's agent, got %v", list)
	}
}
