package models

// DictionaryItem is a token as published to the kid-facing client.
// The prompt text each label resolves to stays server-side.
type DictionaryItem struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Label    string   `json:"label"`
	Tags     []string `json:"tags"`
}

// DictionaryList wraps the active dictionary items.
type DictionaryList struct {
	Items []DictionaryItem `json:"items"`
}

// Preset is a curated bundle of token labels offered as a one-tap starting
// point in the creation wizard.
type Preset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TokenIDs    TokenIDs `json:"tokenIds"`
}

// PresetList wraps the available presets.
type PresetList struct {
	Presets []Preset `json:"presets"`
}
