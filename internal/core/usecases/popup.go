package usecases

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

const (
	unnamedHeader      = "Unnamed"
	noDetailsNotice    = "No additional details available"
	scrollableRowCount = 3
)

// FormatPopup builds the popup body of a feature: its name, its category and
// every other non-empty attribute with a readable key.
func FormatPopup(attrs domain.Attributes, categoryLabel string) domain.PopupContent {
	content := domain.PopupContent{
		Header:   attrs.Name(),
		Category: categoryLabel,
		Rows:     []domain.PopupRow{},
	}
	if content.Header == "" {
		content.Header = unnamedHeader
	}

	for _, attr := range attrs {
		if attr.Key == "name" || isBlank(attr.Value) {
			continue
		}
		content.Rows = append(content.Rows, domain.PopupRow{
			Key:   titleCaseKey(attr.Key),
			Value: FormatValue(attr.Value),
		})
	}

	content.Scrollable = len(content.Rows) > scrollableRowCount
	if len(content.Rows) == 0 {
		content.EmptyNotice = noDetailsNotice
	}
	return content
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == domain.NullSentinel
	}
	return false
}

// FormatValue renders a scalar attribute value as text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// titleCaseKey turns "opening_hours" into "Opening Hours". Only the first
// letter of each word changes case.
func titleCaseKey(key string) string {
	b := []byte(strings.ReplaceAll(key, "_", " "))
	for i, c := range b {
		if !isWordByte(c) || (i > 0 && isWordByte(b[i-1])) {
			continue
		}
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
