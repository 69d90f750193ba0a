package entity

import "testing"

func TestExtractedCardData_MergeIntoKeepsPresentation(t *testing.T) {
	base := DefaultContact()
	base.ProfileImage = "data:image/png;base64,AAAA"
	base.Tags = []string{"Event"}
	base.Notes = "met at fair"

	merged := ExtractedCardData{Name: "Jane Doe", Email: "jane@x.com"}.MergeInto(base)

	if merged.Name != "Jane Doe" || merged.Email != "jane@x.com" {
		t.Fatalf("expected extracted fields to overwrite, got %+v", merged)
	}
	if merged.Company != base.Company || merged.Phone != base.Phone {
		t.Fatalf("expected empty extracted fields to keep existing values, got %+v", merged)
	}
	if merged.Template != base.Template || merged.CustomColor != base.CustomColor || merged.ProfileImage != base.ProfileImage {
		t.Fatalf("presentation fields must not change: %+v", merged)
	}
	if len(merged.Tags) != 1 || merged.Notes != "met at fair" {
		t.Fatalf("metadata must not change: %+v", merged)
	}

	merged.Tags[0] = "changed"
	if base.Tags[0] != "Event" {
		t.Fatalf("merge must not alias the base tag slice")
	}
}

func TestTemplate_ValidAndColor(t *testing.T) {
	if !TemplateBold.Valid() {
		t.Fatalf("expected bold to be valid")
	}
	if Template("neon").Valid() {
		t.Fatalf("expected unknown template to be invalid")
	}
	if Template("neon").Color() != TemplateModern.Color() {
		t.Fatalf("unknown template should fall back to default color")
	}
}

func TestContactRecord_AccentColor(t *testing.T) {
	r := DefaultContact()
	r.CustomColor = ""
	r.Template = TemplateElegant
	if r.AccentColor() != "#059669" {
		t.Fatalf("expected template color, got %s", r.AccentColor())
	}
	r.CustomColor = "#123ABC"
	if r.AccentColor() != "#123ABC" {
		t.Fatalf("expected custom color, got %s", r.AccentColor())
	}
}
