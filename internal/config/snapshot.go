// Package config holds the immutable configuration snapshot, its ini-file
// persistence, and the hot-swap publisher that lets in-flight attempts keep
// a stable view of the config while new requests observe updates.
package config

// Snapshot is an immutable, by-value configuration observed by one
// translation attempt. Mid-attempt mutations to the backing Store are
// invisible to a Snapshot already taken.
type Snapshot struct {
	APIAddress   string
	APIKey       string
	ModelName    string
	Port         int
	SystemPrompt string
	PrePrompt    string
	ContextNum   int
	Temperature  float64
	MaxThreads   int
	Language     int

	EnableGlossary bool
	GlossaryPath   string
	// GlossaryHistory round-trips through Load/Save for the host UI's
	// benefit (a recent-glossaries list); the core never reads it.
	GlossaryHistory []string
}

// Default mirrors the original ConfigManager's AppConfig defaults.
func Default() Snapshot {
	return Snapshot{
		APIAddress:   "https://api.openai.com/v1",
		APIKey:       "sk-xxxxxxxx",
		ModelName:    "gpt-3.5-turbo",
		Port:         6800,
		SystemPrompt: "You are a professional translator for game text. Translate naturally and preserve tone.",
		PrePrompt:    "Translate the following text into Simplified Chinese:\n",
		ContextNum:   5,
		Temperature:  1.0,
		MaxThreads:   8,
		Language:     1,

		EnableGlossary: false,
		GlossaryPath:   "",
	}
}
