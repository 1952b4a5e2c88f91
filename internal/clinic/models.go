package clinic

import (
	"encoding/json"
	"errors"
)

// PatientStatus drives the queue card affordances.
type PatientStatus string

const (
	StatusReady          PatientStatus = "Ready"
	StatusInConsultation PatientStatus = "In-Consultation"
	StatusLabPending     PatientStatus = "Lab Pending"
	StatusComplete       PatientStatus = "Complete"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type LabStatus string

const (
	LabNormal LabStatus = "Normal"
	LabHigh   LabStatus = "High"
	LabLow    LabStatus = "Low"
)

// Instruction tells the patient how a medication relates to meals.
type Instruction string

const (
	BeforeFood Instruction = "Before Food"
	AfterFood  Instruction = "After Food"
	WithFood   Instruction = "With Food"
)

var (
	ErrInvalidStatus      = errors.New("invalid patient status")
	ErrInvalidGender      = errors.New("invalid gender")
	ErrInvalidInstruction = errors.New("invalid medication instruction")
	ErrInvalidLabStatus   = errors.New("invalid lab status")
)

// ParseStatus accepts the wire label of a status.
func ParseStatus(s string) (PatientStatus, error) {
	switch st := PatientStatus(s); st {
	case StatusReady, StatusInConsultation, StatusLabPending, StatusComplete:
		return st, nil
	}
	return "", ErrInvalidStatus
}

func ParseGender(s string) (Gender, error) {
	switch g := Gender(s); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, nil
	}
	return "", ErrInvalidGender
}

func ParseInstruction(s string) (Instruction, error) {
	switch i := Instruction(s); i {
	case BeforeFood, AfterFood, WithFood:
		return i, nil
	}
	return "", ErrInvalidInstruction
}

func ParseLabStatus(s string) (LabStatus, error) {
	switch l := LabStatus(s); l {
	case LabNormal, LabHigh, LabLow:
		return l, nil
	}
	return "", ErrInvalidLabStatus
}

// Phenotype is the vitals snapshot taken at intake. It is not edited afterwards.
type Phenotype struct {
	BloodPressure string  `json:"blood_pressure" yaml:"blood_pressure"` // "SYS/DIA"
	HeartRate     int     `json:"heart_rate" yaml:"heart_rate"`         // bpm
	BMI           float64 `json:"bmi" yaml:"bmi"`
	Temperature   string  `json:"temperature" yaml:"temperature"`
	OxygenLevel   int     `json:"oxygen_level" yaml:"oxygen_level"` // percent
}

type LabResult struct {
	ID     string    `json:"id" yaml:"id"`
	Test   string    `json:"test" yaml:"test"`
	Value  string    `json:"value" yaml:"value"`
	Unit   string    `json:"unit" yaml:"unit"`
	Status LabStatus `json:"status" yaml:"status"`
}

// Timings are independent flags; any combination is valid.
type Timings struct {
	Morning   bool `json:"morning" yaml:"morning"`
	Afternoon bool `json:"afternoon" yaml:"afternoon"`
	Evening   bool `json:"evening" yaml:"evening"`
}

type Medication struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Dosage      string      `json:"dosage" yaml:"dosage"`
	Timings     Timings     `json:"timings" yaml:"timings"`
	Instruction Instruction `json:"instruction" yaml:"instruction"`
}

type Diet struct {
	Recommended []string `json:"recommended" yaml:"recommended"`
	Avoid       []string `json:"avoid" yaml:"avoid"`
}

// StructuredDiagnosis is what the doctor records for one encounter.
// Slice order is display order.
type StructuredDiagnosis struct {
	Summary     string       `json:"summary" yaml:"summary"`
	Diet        Diet         `json:"diet" yaml:"diet"`
	Medications []Medication `json:"medications" yaml:"medications"`
}

// BlankDiagnosis returns the editor template: one empty row per diet list
// and no medications.
func BlankDiagnosis() StructuredDiagnosis {
	return StructuredDiagnosis{
		Diet: Diet{
			Recommended: []string{""},
			Avoid:       []string{""},
		},
		Medications: []Medication{},
	}
}

// Clone returns a deep copy that shares no backing arrays with d.
func (d StructuredDiagnosis) Clone() StructuredDiagnosis {
	out := StructuredDiagnosis{
		Summary: d.Summary,
		Diet: Diet{
			Recommended: cloneStrings(d.Diet.Recommended),
			Avoid:       cloneStrings(d.Diet.Avoid),
		},
		Medications: make([]Medication, len(d.Medications)),
	}
	copy(out.Medications, d.Medications)
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Diagnosis is either unset or a StructuredDiagnosis. The zero value is unset.
type Diagnosis struct {
	structured *StructuredDiagnosis
}

// Unset returns the empty diagnosis marker.
func Unset() Diagnosis {
	return Diagnosis{}
}

// Structured wraps a copy of d.
func Structured(d StructuredDiagnosis) Diagnosis {
	c := d.Clone()
	return Diagnosis{structured: &c}
}

func (d Diagnosis) IsSet() bool {
	return d.structured != nil
}

// Get returns a copy of the structured diagnosis and whether one is set.
func (d Diagnosis) Get() (StructuredDiagnosis, bool) {
	if d.structured == nil {
		return StructuredDiagnosis{}, false
	}
	return d.structured.Clone(), true
}

// MarshalJSON encodes an unset diagnosis as null.
func (d Diagnosis) MarshalJSON() ([]byte, error) {
	if d.structured == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d.structured)
}

func (d *Diagnosis) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.structured = nil
		return nil
	}
	var sd StructuredDiagnosis
	if err := json.Unmarshal(b, &sd); err != nil {
		return err
	}
	d.structured = &sd
	return nil
}

// Patient is one queue member. Patients are never deleted.
type Patient struct {
	ID        string        `json:"id" yaml:"id"` // P-####
	Name      string        `json:"name" yaml:"name"`
	Age       int           `json:"age" yaml:"age"`
	Gender    Gender        `json:"gender" yaml:"gender"`
	Status    PatientStatus `json:"status" yaml:"status"`
	History   []string      `json:"history" yaml:"history"`
	Phenotype Phenotype     `json:"phenotype" yaml:"phenotype"`
	Labs      []LabResult   `json:"labs" yaml:"labs"`
	Diagnosis Diagnosis     `json:"diagnosis" yaml:"-"`
}

// Clone returns a copy that can be handed to callers without exposing
// the queue's own slices.
func (p Patient) Clone() Patient {
	out := p
	out.History = cloneStrings(p.History)
	out.Labs = make([]LabResult, len(p.Labs))
	copy(out.Labs, p.Labs)
	if sd, ok := p.Diagnosis.Get(); ok {
		out.Diagnosis = Diagnosis{structured: &sd}
	}
	return out
}

// DefaultPhenotype is the placeholder vitals snapshot used at registration.
func DefaultPhenotype() Phenotype {
	return Phenotype{
		BloodPressure: "120/80",
		HeartRate:     70,
		BMI:           22.5,
		Temperature:   "98.6°F",
		OxygenLevel:   99,
	}
}
