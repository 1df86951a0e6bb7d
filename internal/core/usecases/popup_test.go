package usecases_test

import (
	"encoding/json"
	"testing"

	"github.com/samirrijal/civicmap/internal/core/domain"
	"github.com/samirrijal/civicmap/internal/core/usecases"
)

func TestFormatPopup(t *testing.T) {
	attrs := domain.Attributes{
		{Key: "amenity", Value: "hospital"},
		{Key: "name", Value: "KMCH"},
		{Key: "website", Value: nil},
		{Key: "phone", Value: "0422 436 3636"},
		{Key: "fax", Value: "NULL"},
		{Key: "email", Value: ""},
		{Key: "opening_hours", Value: "24/7"},
	}

	got := usecases.FormatPopup(attrs, "Hospitals")

	if got.Header != "KMCH" {
		t.Errorf("expected header KMCH, got %q", got.Header)
	}
	if got.Category != "Hospitals" {
		t.Errorf("expected category Hospitals, got %q", got.Category)
	}
	want := []domain.PopupRow{
		{Key: "Amenity", Value: "hospital"},
		{Key: "Phone", Value: "0422 436 3636"},
		{Key: "Opening Hours", Value: "24/7"},
	}
	if len(got.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), got.Rows)
	}
	for i := range want {
		if got.Rows[i] != want[i] {
			t.Errorf("row %d: expected %+v, got %+v", i, want[i], got.Rows[i])
		}
	}
	if got.Scrollable {
		t.Error("three rows should not scroll")
	}
	if got.EmptyNotice != "" {
		t.Errorf("unexpected empty notice %q", got.EmptyNotice)
	}
}

func TestFormatPopup_Scrollable(t *testing.T) {
	attrs := domain.Attributes{
		{Key: "name", Value: "PSG Hospitals"},
		{Key: "beds", Value: json.Number("1200")},
		{Key: "emergency", Value: true},
		{Key: "rating", Value: 4.5},
		{Key: "addr:street", Value: "Avinashi Road"},
	}

	got := usecases.FormatPopup(attrs, "Hospitals")

	if !got.Scrollable {
		t.Error("four rows should scroll")
	}
	want := map[string]string{
		"Beds":        "1200",
		"Emergency":   "true",
		"Rating":      "4.5",
		"Addr:Street": "Avinashi Road",
	}
	for _, row := range got.Rows {
		if want[row.Key] != row.Value {
			t.Errorf("row %q: expected %q, got %q", row.Key, want[row.Key], row.Value)
		}
	}
}

func TestFormatPopup_Unnamed(t *testing.T) {
	got := usecases.FormatPopup(domain.Attributes{{Key: "name", Value: ""}}, "Schools")

	if got.Header != "Unnamed" {
		t.Errorf("expected Unnamed header, got %q", got.Header)
	}
	if len(got.Rows) != 0 {
		t.Errorf("expected no rows, got %+v", got.Rows)
	}
	if got.EmptyNotice != "No additional details available" {
		t.Errorf("unexpected empty notice %q", got.EmptyNotice)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"Town Hall", "Town Hall"},
		{json.Number("42"), "42"},
		{3.25, "3.25"},
		{false, "false"},
		{[]any{"a", "b"}, "[a b]"},
	}
	for _, tt := range tests {
		if got := usecases.FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
