package models

import (
	"fmt"
	"strconv"
	"strings"
)

// StudyField is the closed set of academic categories a faculty belongs to.
type StudyField int

// Known study fields. Ordinals match the numbered menu of the console.
const (
	MechanicalEngineering StudyField = iota + 1
	SoftwareEngineering
	FoodTechnology
	UrbanismArchitecture
	VeterinaryMedicine
)

// DefaultStudyField is assigned to faculties restored from documents that do not carry a field.
const DefaultStudyField = MechanicalEngineering

var studyFieldNames = map[StudyField]string{
	MechanicalEngineering: "MECHANICAL_ENGINEERING",
	SoftwareEngineering:   "SOFTWARE_ENGINEERING",
	FoodTechnology:        "FOOD_TECHNOLOGY",
	UrbanismArchitecture:  "URBANISM_ARCHITECTURE",
	VeterinaryMedicine:    "VETERINARY_MEDICINE",
}

// ErrInvalidStudyField is returned when a value does not name a known study field.
type ErrInvalidStudyField struct {
	Value string
}

func (e *ErrInvalidStudyField) Error() string {
	return fmt.Sprintf("unknown study field %q", e.Value)
}

// StudyFields lists every field in declaration order.
func StudyFields() []StudyField {
	return []StudyField{MechanicalEngineering, SoftwareEngineering, FoodTechnology, UrbanismArchitecture, VeterinaryMedicine}
}

// ParseStudyField accepts a symbolic name (any case, '-' or ' ' for '_') or an ordinal.
func ParseStudyField(raw string) (StudyField, error) {
	value := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(value); err == nil {
		field := StudyField(n)
		if field.Valid() {
			return field, nil
		}
		return 0, &ErrInvalidStudyField{Value: raw}
	}
	normalized := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(value))
	for field, name := range studyFieldNames {
		if name == normalized {
			return field, nil
		}
	}
	return 0, &ErrInvalidStudyField{Value: raw}
}

// Valid reports whether f is one of the declared fields.
func (f StudyField) Valid() bool {
	_, ok := studyFieldNames[f]
	return ok
}

func (f StudyField) String() string {
	if name, ok := studyFieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("StudyField(%d)", int(f))
}

// MarshalText encodes the symbolic name.
func (f StudyField) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, &ErrInvalidStudyField{Value: strconv.Itoa(int(f))}
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a symbolic name or ordinal.
func (f *StudyField) UnmarshalText(text []byte) error {
	parsed, err := ParseStudyField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
