package chat

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPairingStore_RequestThenApprove(t *testing.T) {
	store := NewPairingStore(filepath.Join(t.TempDir(), "pairing.json"))

	if store.IsPaired(42) {
		t.Fatal("expected chat to start unpaired")
	}

	code, err := store.RequestPairing(42)
	if err != nil {
		t.Fatalf("RequestPairing: %v", err)
	}
	if len(code) != pairingCodeLength {
		t.Fatalf("expected a %d-char code, got %q", pairingCodeLength, code)
	}

	chatID, ok, err := store.Approve(strings.ToLower(code))
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !ok || chatID != 42 {
		t.Fatalf("expected approval of chat 42, got ok=%v chatID=%d", ok, chatID)
	}
	if !store.IsPaired(42) {
		t.Fatal("expected chat to be paired after approval")
	}
}

func TestPairingStore_RequestPairingIsIdempotent(t *testing.T) {
	store := NewPairingStore(filepath.Join(t.TempDir(), "pairing.json"))

	first, _ := store.RequestPairing(7)
	second, _ := store.RequestPairing(7)
	if first != second {
		t.Fatalf("expected the same pending code on repeat requests, got %q vs %q", first, second)
	}
}

func TestPairingStore_ApproveUnknownCodeFails(t *testing.T) {
	store := NewPairingStore(filepath.Join(t.TempDir(), "pairing.json"))
	_, ok, err := store.Approve("ZZZZZZ")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if ok {
		t.Fatal("expected approval of an unknown code to fail")
	}
}
