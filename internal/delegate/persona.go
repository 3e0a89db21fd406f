// Package delegate implements the Delegate runner: spawning a sub-agent
// with a fixed persona (system prompt) to handle one task, grounded on the
// original delegate tool's persona table (spec §4.5 "Delegate").
package delegate

// Persona is a predefined sub-agent personality: a system prompt and an
// optional model override.
type Persona struct {
	ID           string `json:"id" toml:"id"`
	Name         string `json:"name" toml:"name"`
	SystemPrompt string `json:"system_prompt" toml:"system_prompt"`
	Model        string `json:"model,omitempty" toml:"model,omitempty"`
}

// DefaultPersonas are the built-in personas, overridable/extendable by
// config (see Registry.LoadCustom).
var DefaultPersonas = []Persona{
	{
		ID:   "researcher",
		Name: "Researcher",
		SystemPrompt: "You are a thorough researcher. Your role is to gather and summarize information, " +
			"cite sources when possible, and present clear, structured answers. Stay factual and concise.",
	},
	{
		ID:   "coder",
		Name: "Coder",
		SystemPrompt: "You are a pragmatic software engineer. Write clean, working code. Prefer standard libraries " +
			"and clear logic. Include minimal comments only where necessary. Output code first, brief explanation after.",
	},
	{
		ID:   "reviewer",
		Name: "Reviewer",
		SystemPrompt: "You are a critical reviewer. Analyze the given content for correctness, style, security, " +
			"and maintainability. List concrete issues and short suggestions. Be concise and actionable.",
	},
	{
		ID:   "writer",
		Name: "Writer",
		SystemPrompt: "You are a clear technical writer. Explain concepts in plain language, use structure " +
			"(headers, lists), and avoid jargon unless necessary. Keep answers focused and readable.",
	},
	{
		ID:   "home_assistant",
		Name: "Home Assistant",
		SystemPrompt: "Home Assistant specialist. Use MCP to list/control entities, call services, check states; " +
			"suggest automations. Be concise and precise with entity IDs and service names.",
	},
}

// Registry holds the active persona set, defaults merged with any custom
// personas supplied by config (custom entries override defaults by ID).
type Registry struct {
	personas map[string]Persona
}

// NewRegistry creates a Registry seeded with DefaultPersonas.
func NewRegistry() *Registry {
	r := &Registry{personas: make(map[string]Persona, len(DefaultPersonas))}
	for _, p := range DefaultPersonas {
		r.personas[p.ID] = p
	}
	return r
}

// LoadCustom merges custom persona definitions in, overriding defaults by ID.
func (r *Registry) LoadCustom(custom []Persona) {
	for _, p := range custom {
		if p.ID == "" {
			continue
		}
		r.personas[p.ID] = p
	}
}

// Get returns the persona by id.
func (r *Registry) Get(id string) (Persona, bool) {
	p, ok := r.personas[id]
	return p, ok
}

// IDs returns the known persona ids, for error messages.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.personas))
	for id := range r.personas {
		ids = append(ids, id)
	}
	return ids
}
