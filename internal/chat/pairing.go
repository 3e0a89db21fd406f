// Package chat implements the Chat Front-End: pairing, new-thread agent
// routing, detached runs, and output formatting, grounded on the original
// Telegram integration module (spec §4.9 "Chat Front-End").
package chat

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/storeutil"
)

const pairingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const pairingCodeLength = 6

// DefaultPairingPath mirrors the original tool's pairing state location.
func DefaultPairingPath(home string) string {
	return filepath.Join(home, ".cursor-enhanced", "telegram-pairing.json")
}

type pairingFile struct {
	PairedUsers     []int64           `json:"paired_users"`
	PendingPairings map[string]string `json:"pending_pairings"`
}

// PairingStore is the durable set of paired chat ids and pending pairing
// codes (spec §4.9 "Pairing").
type PairingStore struct {
	Path string
	mu   sync.Mutex
}

// NewPairingStore creates a PairingStore at path.
func NewPairingStore(path string) *PairingStore {
	return &PairingStore{Path: path}
}

func (p *PairingStore) load() pairingFile {
	var pf pairingFile
	storeutil.ReadJSONOrDefault(p.Path, &pf)
	if pf.PendingPairings == nil {
		pf.PendingPairings = make(map[string]string)
	}
	return pf
}

func (p *PairingStore) save(pf pairingFile) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return err
	}
	lock, err := storeutil.Acquire(p.Path)
	if err != nil {
		return err
	}
	defer lock.Release()
	return storeutil.WriteJSONAtomic(p.Path, pf)
}

// IsPaired reports whether chatID is already authorized.
func (p *PairingStore) IsPaired(chatID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pf := p.load()
	for _, id := range pf.PairedUsers {
		if id == chatID {
			return true
		}
	}
	return false
}

// PairedChatIDs returns every currently-paired chat id, for the Scheduler
// Core's reach-message broadcast.
func (p *PairingStore) PairedChatIDs() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	pf := p.load()
	ids := make([]int64, len(pf.PairedUsers))
	copy(ids, pf.PairedUsers)
	return ids
}

// RequestPairing generates (or returns the existing) pending code for
// chatID and persists it.
func (p *PairingStore) RequestPairing(chatID int64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pf := p.load()

	key := strconv.FormatInt(chatID, 10)
	if code, ok := pf.PendingPairings[key]; ok {
		return code, nil
	}

	code, err := generatePairingCode()
	if err != nil {
		return "", err
	}
	pf.PendingPairings[key] = code
	if err := p.save(pf); err != nil {
		return "", err
	}
	return code, nil
}

// Approve moves the chat whose pending code matches (case-insensitively)
// into paired_users, removing it from pending_pairings. Returns false if no
// pending chat matched.
func (p *PairingStore) Approve(code string) (int64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pf := p.load()

	code = strings.ToUpper(strings.TrimSpace(code))
	var matchedKey string
	for chatKey, pending := range pf.PendingPairings {
		if strings.ToUpper(pending) == code {
			matchedKey = chatKey
			break
		}
	}
	if matchedKey == "" {
		return 0, false, nil
	}

	chatID, err := strconv.ParseInt(matchedKey, 10, 64)
	if err != nil {
		return 0, false, err
	}

	delete(pf.PendingPairings, matchedKey)
	pf.PairedUsers = append(pf.PairedUsers, chatID)
	if err := p.save(pf); err != nil {
		return 0, false, err
	}
	return chatID, true, nil
}

func generatePairingCode() (string, error) {
	b := make([]byte, pairingCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate pairing code: %w", err)
	}
	out := make([]byte, pairingCodeLength)
	for i, v := range b {
		out[i] = pairingCodeAlphabet[int(v)%len(pairingCodeAlphabet)]
	}
	return string(out), nil
}
