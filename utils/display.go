// utils/display.go
package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayCategory renders a category tag for presentation: "self_care" and
// "self-care" both become "Self Care".
func DisplayCategory(category string) string {
	if category == "" {
		return "General"
	}
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(category)
	return titleCaser.String(cleaned)
}
