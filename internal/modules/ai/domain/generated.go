package domain

// GeneratedBoard is the structure the board generator answers with.
type GeneratedBoard struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Label       string           `json:"label,omitempty"`
	Groups      []GeneratedGroup `json:"groups"`
}

type GeneratedGroup struct {
	Title string          `json:"title"`
	Color string          `json:"color,omitempty"`
	Tasks []GeneratedTask `json:"tasks"`
}

type GeneratedTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
}
