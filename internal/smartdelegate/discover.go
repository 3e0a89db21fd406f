package smartdelegate

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"
)

// modelsCacheTTL matches the original tool's 5-minute discovery cache.
const modelsCacheTTL = 300 * time.Second

// ModelInfo is one model entry as reported by the child-agent binary's
// --list-models output.
type ModelInfo struct {
	ID   string
	Name string
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")
var modelLinePattern = regexp.MustCompile(`^(\S+)\s+-\s+(.+)$`)
var markerPattern = regexp.MustCompile(`\s*\((?:default|current)\)\s*`)

// Discoverer caches the result of `<binary> --list-models` for
// modelsCacheTTL, avoiding a subprocess round trip on every delegation.
type Discoverer struct {
	BinaryPath string

	mu       sync.Mutex
	cachedAt time.Time
	cached   []ModelInfo
}

// NewDiscoverer creates a Discoverer for binaryPath.
func NewDiscoverer(binaryPath string) *Discoverer {
	return &Discoverer{BinaryPath: binaryPath}
}

// Discover returns the known models, refreshing the cache if stale. A
// subprocess failure or unparsable output yields an empty slice rather
// than an error — callers fall back to the literal "auto" model.
func (d *Discoverer) Discover(ctx context.Context) []ModelInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil && time.Since(d.cachedAt) < modelsCacheTTL {
		return d.cached
	}

	models := d.discoverLocked(ctx)
	if len(models) > 0 {
		d.cached = models
		d.cachedAt = time.Now()
	}
	return models
}

func (d *Discoverer) discoverLocked(ctx context.Context) []ModelInfo {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", d.BinaryPath, "--list-models")
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	var models []ModelInfo
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(ansiEscape.ReplaceAllString(line, ""))
		if line == "" || strings.HasPrefix(line, "Available") ||
			strings.HasPrefix(line, "Tip:") || strings.HasPrefix(line, "Loading") {
			continue
		}
		m := modelLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(markerPattern.ReplaceAllString(m[2], " "))
		models = append(models, ModelInfo{ID: strings.TrimSpace(m[1]), Name: name})
	}
	return models
}

func modelName(id string, models []ModelInfo) string {
	for _, m := range models {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}
