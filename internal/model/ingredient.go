package model

// Measurement is a single amount/unit pair.
// Amounts stay strings so fractions and ranges ("1/2", "6 to 8", "6-8") survive unchanged.
type Measurement struct {
	Amount *string `json:"amount,omitempty"` // "2", "1 1/2", "6-8"
	Unit   *string `json:"unit,omitempty"`   // Unit as written: "cups", "g each", "heaping tablespoons"
}

// NewMeasurement builds a measurement, treating empty strings as absent
func NewMeasurement(amount, unit string) Measurement {
	var m Measurement
	if amount != "" {
		m.Amount = &amount
	}
	if unit != "" {
		m.Unit = &unit
	}
	return m
}

// AmountString returns the amount or "" when absent
func (m Measurement) AmountString() string {
	if m.Amount == nil {
		return ""
	}
	return *m.Amount
}

// UnitString returns the unit or "" when absent
func (m Measurement) UnitString() string {
	if m.Unit == nil {
		return ""
	}
	return *m.Unit
}

// String renders the measurement the way it would appear in a recipe
func (m Measurement) String() string {
	switch {
	case m.Amount != nil && m.Unit != nil:
		return *m.Amount + " " + *m.Unit
	case m.Amount != nil:
		return *m.Amount
	case m.Unit != nil:
		return *m.Unit
	}
	return ""
}

// ParsedIngredient is the structured form of one ingredient line.
// Measurements are ordered: the primary measurement first, then alternates in discovery order.
type ParsedIngredient struct {
	Item         string        `json:"item"`
	Measurements []Measurement `json:"measurements"`
	Note         *string       `json:"note,omitempty"`
	Raw          *string       `json:"raw,omitempty"`     // Trimmed original line
	Section      *string       `json:"section,omitempty"` // "For the Sauce", set by multi-line parsing
}

// NoteString returns the note or "" when absent
func (p ParsedIngredient) NoteString() string {
	if p.Note == nil {
		return ""
	}
	return *p.Note
}

// SectionString returns the section or "" when absent
func (p ParsedIngredient) SectionString() string {
	if p.Section == nil {
		return ""
	}
	return *p.Section
}

// Clone returns a copy whose measurement slice can be appended to independently
func (p ParsedIngredient) Clone() ParsedIngredient {
	out := p
	out.Measurements = make([]Measurement, len(p.Measurements), len(p.Measurements)+1)
	copy(out.Measurements, p.Measurements)
	return out
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
