package entity

// ExtractedCardData holds the fields recovered from a scanned business card.
// Every field may be empty.
type ExtractedCardData struct {
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title" yaml:"title"`
	Company string `json:"company" yaml:"company"`
	Email   string `json:"email" yaml:"email"`
	Phone   string `json:"phone" yaml:"phone"`
	Website string `json:"website" yaml:"website"`
	Address string `json:"address" yaml:"address"`
}

// Empty reports whether nothing was extracted.
func (d ExtractedCardData) Empty() bool {
	return d == ExtractedCardData{}
}

// MergeInto overwrites the fields of r that have a non-empty extracted value.
// Template, color, images, tags and notes are left untouched.
func (d ExtractedCardData) MergeInto(r ContactRecord) ContactRecord {
	out := r.Clone()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.Name, d.Name)
	set(&out.Title, d.Title)
	set(&out.Company, d.Company)
	set(&out.Email, d.Email)
	set(&out.Phone, d.Phone)
	set(&out.Website, d.Website)
	set(&out.Address, d.Address)
	return out
}
