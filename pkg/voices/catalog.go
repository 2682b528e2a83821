// Package voices holds the built-in voice catalog for speech synthesis.
package voices

import (
	"strings"

	"docvoice/pkg/model"
)

// Catalog returns the built-in voices in their canonical order.
// The order matters: speaker-tag assignment draws from it round-robin.
func Catalog() []model.Voice {
	return []model.Voice{
		{Name: "Tara", Gender: model.GenderFemale, Description: "Female, English, conversational, clear"},
		{Name: "Leah", Gender: model.GenderFemale, Description: "Female, English, warm, gentle"},
		{Name: "Jess", Gender: model.GenderFemale, Description: "Female, English, energetic, youthful"},
		{Name: "Leo", Gender: model.GenderMale, Description: "Male, English, authoritative, deep"},
		{Name: "Dan", Gender: model.GenderMale, Description: "Male, English, friendly, casual"},
		{Name: "Mia", Gender: model.GenderFemale, Description: "Female, English, professional, articulate"},
		{Name: "Zac", Gender: model.GenderMale, Description: "Male, English, enthusiastic, dynamic"},
		{Name: "Zoe", Gender: model.GenderFemale, Description: "Female, English, calm, soothing"},
	}
}

// ByName looks up a catalog voice, ignoring case. The second return is
// false when the name is unknown.
func ByName(name string) (model.Voice, bool) {
	for _, v := range Catalog() {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return model.Voice{}, false
}

// Names returns the catalog voice names in canonical order.
func Names() []string {
	cat := Catalog()
	names := make([]string, len(cat))
	for i, v := range cat {
		names[i] = v.Name
	}
	return names
}
