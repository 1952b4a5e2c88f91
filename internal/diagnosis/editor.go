// Package diagnosis holds the doctor's working draft of a structured
// diagnosis for the patient currently on screen.
package diagnosis

import (
	"errors"

	"github.com/google/uuid"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
)

// DietKind names one of the two diet lists.
type DietKind string

const (
	Recommended DietKind = "recommended"
	Avoid       DietKind = "avoid"
)

var (
	ErrInvalidDietKind = errors.New("diet kind must be recommended or avoid")
	ErrIndexOutOfRange = errors.New("diet index out of range")
)

func ParseDietKind(s string) (DietKind, error) {
	switch k := DietKind(s); k {
	case Recommended, Avoid:
		return k, nil
	}
	return "", ErrInvalidDietKind
}

// TimingsPatch carries the timing flags a caller wants to change.
type TimingsPatch struct {
	Morning   *bool `json:"morning,omitempty"`
	Afternoon *bool `json:"afternoon,omitempty"`
	Evening   *bool `json:"evening,omitempty"`
}

// MedicationPatch is a partial medication update; nil fields are left alone.
type MedicationPatch struct {
	Name        *string       `json:"name,omitempty"`
	Dosage      *string       `json:"dosage,omitempty"`
	Timings     *TimingsPatch `json:"timings,omitempty"`
	Instruction *string       `json:"instruction,omitempty"`
}

// Apply merges the patch into m and returns the result.
func (p MedicationPatch) Apply(m clinic.Medication) (clinic.Medication, error) {
	if p.Instruction != nil {
		ins, err := clinic.ParseInstruction(*p.Instruction)
		if err != nil {
			return m, err
		}
		m.Instruction = ins
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Dosage != nil {
		m.Dosage = *p.Dosage
	}
	if t := p.Timings; t != nil {
		if t.Morning != nil {
			m.Timings.Morning = *t.Morning
		}
		if t.Afternoon != nil {
			m.Timings.Afternoon = *t.Afternoon
		}
		if t.Evening != nil {
			m.Timings.Evening = *t.Evening
		}
	}
	return m, nil
}

// Editor owns one draft at a time. Every mutation builds a fresh draft and
// swaps it in, so values returned earlier are never modified afterwards.
// Editor is not safe for concurrent use; queue.Service serializes access.
type Editor struct {
	patientID string
	draft     clinic.StructuredDiagnosis
	newID     func() string
}

// NewEditor returns an editor that names medications with random UUIDs.
func NewEditor() *Editor {
	return NewEditorWithIDs(uuid.NewString)
}

// NewEditorWithIDs lets tests supply a deterministic id source.
func NewEditorWithIDs(newID func() string) *Editor {
	return &Editor{
		draft: clinic.BlankDiagnosis(),
		newID: newID,
	}
}

// Seed discards the current draft and starts over for p: a copy of p's
// stored diagnosis when it has one, the blank template otherwise. A nil
// patient clears the editor.
func (e *Editor) Seed(p *clinic.Patient) {
	if p == nil {
		e.patientID = ""
		e.draft = clinic.BlankDiagnosis()
		return
	}
	e.patientID = p.ID
	if sd, ok := p.Diagnosis.Get(); ok {
		e.draft = sd
		return
	}
	e.draft = clinic.BlankDiagnosis()
}

// PatientID is the id the draft was seeded for, empty when cleared.
func (e *Editor) PatientID() string {
	return e.patientID
}

func (e *Editor) Draft() clinic.StructuredDiagnosis {
	return e.draft.Clone()
}

func (e *Editor) SetSummary(text string) clinic.StructuredDiagnosis {
	next := e.draft.Clone()
	next.Summary = text
	e.draft = next
	return e.Draft()
}

// AddDietItem appends an empty row to the named list.
func (e *Editor) AddDietItem(kind DietKind) (clinic.StructuredDiagnosis, error) {
	next := e.draft.Clone()
	switch kind {
	case Recommended:
		next.Diet.Recommended = append(next.Diet.Recommended, "")
	case Avoid:
		next.Diet.Avoid = append(next.Diet.Avoid, "")
	default:
		return e.Draft(), ErrInvalidDietKind
	}
	e.draft = next
	return e.Draft(), nil
}

// UpdateDietItem replaces the row at index. The draft is unchanged on error.
func (e *Editor) UpdateDietItem(kind DietKind, index int, text string) (clinic.StructuredDiagnosis, error) {
	next := e.draft.Clone()
	var list []string
	switch kind {
	case Recommended:
		list = next.Diet.Recommended
	case Avoid:
		list = next.Diet.Avoid
	default:
		return e.Draft(), ErrInvalidDietKind
	}
	if index < 0 || index >= len(list) {
		return e.Draft(), ErrIndexOutOfRange
	}
	list[index] = text
	e.draft = next
	return e.Draft(), nil
}

// AddMedication appends a blank medication taken after food.
func (e *Editor) AddMedication() clinic.Medication {
	med := clinic.Medication{
		ID:          e.freshID(),
		Instruction: clinic.AfterFood,
	}
	next := e.draft.Clone()
	next.Medications = append(next.Medications, med)
	e.draft = next
	return med
}

// UpdateMedication merges patch into the medication with the given id.
// It reports false when no medication has that id.
func (e *Editor) UpdateMedication(id string, patch MedicationPatch) (bool, error) {
	next := e.draft.Clone()
	for i, m := range next.Medications {
		if m.ID != id {
			continue
		}
		updated, err := patch.Apply(m)
		if err != nil {
			return false, err
		}
		next.Medications[i] = updated
		e.draft = next
		return true, nil
	}
	return false, nil
}

// RemoveMedication drops the medication with the given id, keeping the
// order of the rest. It reports false when no medication has that id.
func (e *Editor) RemoveMedication(id string) bool {
	kept := make([]clinic.Medication, 0, len(e.draft.Medications))
	for _, m := range e.draft.Medications {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(e.draft.Medications) {
		return false
	}
	next := e.draft.Clone()
	next.Medications = kept
	e.draft = next
	return true
}

// freshID never returns an id already used in the draft.
func (e *Editor) freshID() string {
	for {
		id := e.newID()
		if !e.hasMedication(id) {
			return id
		}
	}
}

func (e *Editor) hasMedication(id string) bool {
	for _, m := range e.draft.Medications {
		if m.ID == id {
			return true
		}
	}
	return false
}
