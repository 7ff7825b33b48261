package room

import (
	"fmt"
	"math"
)

// FieldError names the first input field that broke a validation rule.
type FieldError struct {
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Validator checks room snapshots against the game's placement rules before
// they reach the calculator. The calculator itself assumes valid input, so
// producers run this first. Validation fails fast: the first offending field
// is reported and nothing after it is inspected.
type Validator struct{}

// NewValidator creates a new room validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the whole room and returns a *FieldError for the first
// rule violation, or nil when the snapshot is well formed.
func (v *Validator) Validate(r *Room) error {
	if r == nil {
		return &FieldError{Path: "room", Reason: "must not be nil"}
	}

	capacity, ok := Capacity(r.Level)
	if !ok {
		return &FieldError{
			Path:   "level",
			Reason: fmt.Sprintf("must be between 0 and %d, got %d", MaxLevel, r.Level),
		}
	}
	if len(r.Racks) > capacity {
		return &FieldError{
			Path:   "racks",
			Reason: fmt.Sprintf("room level %d holds at most %d racks, got %d", r.Level, capacity, len(r.Racks)),
		}
	}

	for i := range r.Racks {
		if err := v.validateRack(&r.Racks[i], fmt.Sprintf("racks[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateRack(rack *Rack, path string) error {
	if rack.Height != 3 && rack.Height != 4 {
		return &FieldError{
			Path:   path + ".height",
			Reason: fmt.Sprintf("must be 3 or 4, got %d", rack.Height),
		}
	}
	if rack.BonusPercent < 0 {
		return &FieldError{
			Path:   path + ".bonus",
			Reason: fmt.Sprintf("must not be negative, got %d", rack.BonusPercent),
		}
	}

	for j := range rack.Miners {
		if err := v.validateMiner(&rack.Miners[j], fmt.Sprintf("%s.miners[%d]", path, j)); err != nil {
			return err
		}
	}

	// Each floor holds two width units, so the exact feasibility check for
	// 1 and 2 unit miners is the width sum against the rack size.
	if used := rack.usedWidth(); used > rack.Size() {
		return &FieldError{
			Path:   path + ".miners",
			Reason: fmt.Sprintf("occupy %d width units, a rack of height %d fits %d", used, rack.Height, rack.Size()),
		}
	}
	return nil
}

func (v *Validator) validateMiner(m *Miner, path string) error {
	if m.Name == "" {
		return &FieldError{Path: path + ".name", Reason: "must not be empty"}
	}
	if m.Level < 0 {
		return &FieldError{
			Path:   path + ".level",
			Reason: fmt.Sprintf("must not be negative, got %d", m.Level),
		}
	}
	if math.IsNaN(m.Power) || math.IsInf(m.Power, 0) {
		return &FieldError{Path: path + ".power", Reason: "must be a finite number"}
	}
	if m.Power < 0 {
		return &FieldError{
			Path:   path + ".power",
			Reason: fmt.Sprintf("must not be negative, got %v", m.Power),
		}
	}
	if m.BonusPercent < 0 {
		return &FieldError{
			Path:   path + ".bonus_percent",
			Reason: fmt.Sprintf("must not be negative, got %d", m.BonusPercent),
		}
	}
	// Width 0 means the export did not record one; occupancy treats it as 1.
	if m.Width != 0 && m.Width != 1 && m.Width != 2 {
		return &FieldError{
			Path:   path + ".width",
			Reason: fmt.Sprintf("must be 1 or 2, got %d", m.Width),
		}
	}
	return nil
}
