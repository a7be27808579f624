package domain

import "time"

// LaunchKit is the listing view of a session, as shown in an owner's saved kits.
type LaunchKit struct {
	SessionID   string    `json:"session_id"`
	ProductName string    `json:"product_name"`
	Owner       string    `json:"owner,omitempty"`
	Status      string    `json:"status"`
	Persona     string    `json:"persona,omitempty"`
	Style       string    `json:"style,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Kit builds the listing view of s. Status is the current_step label.
func (s *State) Kit() LaunchKit {
	k := LaunchKit{
		SessionID:   s.SessionID,
		ProductName: s.UserInput.ProductName,
		Owner:       s.Owner,
		Status:      s.CurrentStep,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.SelectedPersona != nil {
		k.Persona = s.SelectedPersona.PersonaName
	}
	if s.SelectedCreativeDraft != nil {
		k.Style = s.SelectedCreativeDraft.Style
	}
	return k
}
