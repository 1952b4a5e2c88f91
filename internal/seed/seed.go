// Package seed loads the queue the service starts with.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
)

//go:embed queue.yml
var defaultQueue []byte

var (
	ErrMissingID   = errors.New("seed patient is missing an id")
	ErrDuplicateID  = errors.New("duplicate seed patient id")
	ErrMissingName = errors.New("seed patient is missing a name")
)

type file struct {
	Patients []clinic.Patient `yaml:"patients"`
}

// Load reads the seed queue from path, or the embedded default queue when
// path is empty.
func Load(path string) ([]clinic.Patient, error) {
	if path == "" {
		return Parse(defaultQueue)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a seed document. Stored diagnoses are never
// seeded; every patient starts with none.
func Parse(b []byte) ([]clinic.Patient, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed queue: %w", err)
	}

	seen := make(map[string]bool, len(f.Patients))
	for i := range f.Patients {
		p := &f.Patients[i]
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("patient %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = true
		if p.History == nil {
			p.History = []string{}
		}
		if p.Labs == nil {
			p.Labs = []clinic.LabResult{}
		}
	}
	return f.Patients, nil
}

func validate(p *clinic.Patient) error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Name == "" {
		return ErrMissingName
	}
	if p.Status == "" {
		p.Status = clinic.StatusReady
	}
	if _, err := clinic.ParseStatus(string(p.Status)); err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	if _, err := clinic.ParseGender(string(p.Gender)); err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	for _, l := range p.Labs {
		if _, err := clinic.ParseLabStatus(string(l.Status)); err != nil {
			return fmt.Errorf("%s lab %s: %w", p.ID, l.ID, err)
		}
	}
	return nil
}

// Marshal renders patients in the same document shape Load accepts.
func Marshal(patients []clinic.Patient) ([]byte, error) {
	b, err := yaml.Marshal(file{Patients: patients})
	if err != nil {
		return nil, fmt.Errorf("failed to encode seed queue: %w", err)
	}
	return b, nil
}
