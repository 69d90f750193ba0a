package dto

// MetadataRequest replaces the tags and notes of the profile.
type MetadataRequest struct {
	Tags  []string `json:"tags"`
	Notes string   `json:"notes"`
}

// ScanRequest carries the card photo as a data URL.
type ScanRequest struct {
	ImageData string `json:"imageData"`
}

// TemplateInfo describes one card template.
type TemplateInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TemplatesResponse lists templates and suggested tags for the editor.
type TemplatesResponse struct {
	Templates     []TemplateInfo `json:"templates"`
	SuggestedTags []string       `json:"suggestedTags"`
}

// NotificationRequest announces a newly created contact.
type NotificationRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
