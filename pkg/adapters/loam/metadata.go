package loam

// PromptMetadata is the front matter of a prompt document.
// The document body is the system prompt.
type PromptMetadata struct {
	// ID names the artifact the prompt produces (e.g. market_research).
	// Defaults to the file name without extension.
	ID          string   `json:"id" mapstructure:"id"`
	Temperature *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	Description string   `json:"description,omitempty" mapstructure:"description"`
}
