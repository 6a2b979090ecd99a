package financials

import (
	"testing"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		input     string
		expected  Field
		expectErr bool
	}{
		{"productPricePerKg", FieldProductPricePerKg, false},
		{"product_price_per_kg", FieldProductPricePerKg, false},
		{"ProductPricePerKg", FieldProductPricePerKg, false},
		{"rm-inventory-days", FieldRMInventoryDays, false},
		{"  yieldPct ", FieldYieldPct, false},
		{"price", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseField(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParseField(%q) expected error, got %q", tt.input, f)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseField(%q) unexpected error: %v", tt.input, err)
			}
			if f != tt.expected {
				t.Errorf("ParseField(%q) = %q, expected %q", tt.input, f, tt.expected)
			}
		})
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	fields := Fields()
	if len(fields) != 27 {
		t.Fatalf("expected 27 fields, got %d", len(fields))
	}

	base := DefaultAssumptions()
	for i, f := range fields {
		t.Run(string(f), func(t *testing.T) {
			if !f.Valid() {
				t.Fatalf("field %q is not registered", f)
			}
			if f.Label() == string(f) {
				t.Errorf("field %q has no label", f)
			}

			value := float64(100 + i)
			updated, err := base.With(f, value)
			if err != nil {
				t.Fatalf("With(%q) unexpected error: %v", f, err)
			}
			got, err := updated.Get(f)
			if err != nil {
				t.Fatalf("Get(%q) unexpected error: %v", f, err)
			}
			if got != value {
				t.Errorf("Get(%q) = %v, expected %v", f, got, value)
			}

			if base != DefaultAssumptions() {
				t.Errorf("With(%q) modified the receiver", f)
			}
		})
	}
}

func TestFieldIntegerRounding(t *testing.T) {
	a, err := DefaultAssumptions().With(FieldHoursPerDay, 8.6)
	if err != nil {
		t.Fatalf("With() unexpected error: %v", err)
	}
	if a.HoursPerDay != 9 {
		t.Errorf("HoursPerDay = %d, expected 9", a.HoursPerDay)
	}
	if !FieldHoursPerDay.IsInteger() || FieldYieldPct.IsInteger() {
		t.Error("IsInteger() misreports integer fields")
	}
}

func TestFieldUnknown(t *testing.T) {
	a := DefaultAssumptions()
	if _, err := a.Get(Field("bogus")); err == nil {
		t.Error("Get() expected error for unknown field")
	}
	if _, err := a.With(Field("bogus"), 1); err == nil {
		t.Error("With() expected error for unknown field")
	}
}

func TestPreset(t *testing.T) {
	names := PresetNames()
	expected := []string{"conservative", "default", "optimistic"}
	if len(names) != len(expected) {
		t.Fatalf("PresetNames() = %v, expected %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("PresetNames()[%d] = %q, expected %q", i, names[i], expected[i])
		}
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			a, err := Preset(name)
			if err != nil {
				t.Fatalf("Preset(%q) unexpected error: %v", name, err)
			}
			if err := a.Validate(); err != nil {
				t.Errorf("preset %q does not validate: %v", name, err)
			}
			r := mustEvaluate(t, a)
			if r.ByproductCapacityExceeded {
				t.Errorf("preset %q exceeds byproduct capacity", name)
			}
		})
	}

	if a, err := Preset(""); err != nil || a != DefaultAssumptions() {
		t.Errorf("Preset(\"\") should return the defaults, got err %v", err)
	}
	if a, err := Preset("Optimistic"); err != nil || a.HoursPerDay != 16 {
		t.Errorf("Preset(\"Optimistic\") should be case-insensitive, got err %v", err)
	}
	if _, err := Preset("aggressive"); err == nil {
		t.Error("Preset(\"aggressive\") expected error")
	}
}

func TestPresetOrdering(t *testing.T) {
	profit := map[string]float64{}
	for _, name := range PresetNames() {
		a, _ := Preset(name)
		profit[name] = mustEvaluate(t, a).Profit.NetProfit
	}
	if !(profit["conservative"] < profit["default"] && profit["default"] < profit["optimistic"]) {
		t.Errorf("expected conservative < default < optimistic net profit, got %v", profit)
	}
}
