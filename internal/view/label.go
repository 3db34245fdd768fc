package view

import (
	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/models"
)

// DefaultMaxLabelLength is the number of characters shown before a label is
// cut short with " ..."
const DefaultMaxLabelLength = 100

func label(v *models.Value, expanded bool, max int) string {
	switch v.Kind() {
	case models.KindObject:
		if expanded {
			return "{}"
		}
	case models.KindArray:
		if expanded {
			return "[]"
		}
	case models.KindProperty:
		if expanded {
			return v.Name()
		}
		return formatter.Abbreviate(v.Name()+": "+compact(v.PropertyValue()), max)
	}
	return formatter.Abbreviate(compact(v), max)
}

func compact(v *models.Value) string {
	text, err := formatter.Compact(v)
	if err != nil {
		return "?"
	}
	return text
}
