package entity

// Template identifies the card layout used when rendering a profile.
type Template string

// Supported card templates.
const (
	TemplateModern  Template = "modern"
	TemplateMinimal Template = "minimal"
	TemplateElegant Template = "elegant"
	TemplateBold    Template = "bold"
)

// DefaultTemplate is applied whenever a stored or submitted template is unknown.
const DefaultTemplate = TemplateModern

var templateColors = map[Template]string{
	TemplateModern:  "#a855f7",
	TemplateMinimal: "#64748b",
	TemplateElegant: "#059669",
	TemplateBold:    "#ea580c",
}

// Templates lists the supported templates in display order.
func Templates() []Template {
	return []Template{TemplateModern, TemplateMinimal, TemplateElegant, TemplateBold}
}

// Valid reports whether t is one of the supported templates.
func (t Template) Valid() bool {
	_, ok := templateColors[t]
	return ok
}

// Color returns the accent color of the template.
func (t Template) Color() string {
	if c, ok := templateColors[t]; ok {
		return c
	}
	return templateColors[DefaultTemplate]
}

// ContactRecord is the persisted contact profile.
type ContactRecord struct {
	Name         string   `json:"name" yaml:"name"`
	Title        string   `json:"title" yaml:"title"`
	Company      string   `json:"company" yaml:"company"`
	Email        string   `json:"email" yaml:"email"`
	Phone        string   `json:"phone" yaml:"phone"`
	Website      string   `json:"website" yaml:"website"`
	Address      string   `json:"address" yaml:"address"`
	ProfileImage string   `json:"profileImage,omitempty" yaml:"profileImage,omitempty"`
	CompanyLogo  string   `json:"companyLogo,omitempty" yaml:"companyLogo,omitempty"`
	Template     Template `json:"template" yaml:"template"`
	CustomColor  string   `json:"customColor,omitempty" yaml:"customColor,omitempty"`
	Tags         []string `json:"tags" yaml:"tags"`
	Notes        string   `json:"notes" yaml:"notes"`
}

// DefaultContact returns the record used on first run and whenever stored
// state cannot be trusted.
func DefaultContact() ContactRecord {
	return ContactRecord{
		Name:        "Max Mustermann",
		Title:       "Senior Developer",
		Company:     "TechCorp GmbH",
		Email:       "max.mustermann@techcorp.de",
		Phone:       "+49 123 456789",
		Website:     "https://techcorp.de",
		Address:     "Musterstraße 123, 12345 Berlin",
		Template:    TemplateModern,
		CustomColor: "#a855f7",
		Tags:        []string{},
		Notes:       "",
	}
}

// Clone returns a deep copy so callers cannot mutate shared tag slices.
func (r ContactRecord) Clone() ContactRecord {
	out := r
	out.Tags = append([]string{}, r.Tags...)
	return out
}

// AccentColor resolves the color a card should be rendered with.
func (r ContactRecord) AccentColor() string {
	if r.CustomColor != "" {
		return r.CustomColor
	}
	return r.Template.Color()
}

// ToMap exposes the record in the loosely typed shape accepted by the schema guard.
func (r ContactRecord) ToMap() map[string]any {
	tags := make([]any, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t)
	}
	m := map[string]any{
		"name":     r.Name,
		"title":    r.Title,
		"company":  r.Company,
		"email":    r.Email,
		"phone":    r.Phone,
		"website":  r.Website,
		"address":  r.Address,
		"template": string(r.Template),
		"tags":     tags,
		"notes":    r.Notes,
	}
	if r.ProfileImage != "" {
		m["profileImage"] = r.ProfileImage
	}
	if r.CompanyLogo != "" {
		m["companyLogo"] = r.CompanyLogo
	}
	if r.CustomColor != "" {
		m["customColor"] = r.CustomColor
	}
	return m
}

// SuggestedTags are offered when tagging a contact.
func SuggestedTags() []string {
	return []string{"Event", "Meeting", "Konferenz", "Messe", "Workshop", "Networking", "Geschäftspartner", "Kunde", "Lieferant", "Investor"}
}
