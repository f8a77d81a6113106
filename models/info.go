package models

import "fmt"

// Info describes a single model in the catalog.
type Info struct {
	Name           string   `json:"name"`
	ID             string   `json:"id,omitempty"`
	Provider       string   `json:"provider"`
	Category       Category `json:"category"`
	Description    string   `json:"description"`
	MaxTokens      int      `json:"max_tokens,omitempty"`
	IsExperimental bool     `json:"is_experimental"`
}

// Identifier is the model id sent to the provider.
func (i Info) Identifier() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Name
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Provider)
}
