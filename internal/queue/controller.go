package queue

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
)

// Simulated ages are drawn from [minSimulatedAge, minSimulatedAge+simulatedAgeSpan).
const (
	minSimulatedAge  = 20
	simulatedAgeSpan = 50
	firstPatientNo   = 1000
)

// Intake is what reception types in. Zero Age or empty Gender means the
// value is simulated.
type Intake struct {
	Name   string
	Age    int
	Gender clinic.Gender
}

// Controller owns the queue order and the cursor. It has no locking of its
// own; Service is the only caller.
type Controller struct {
	patients []clinic.Patient
	cursor   int
	lastNo   int
	rng      *rand.Rand
}

type Option func(*Controller)

// WithRand sets the random source used for simulated intake values.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// NewController starts a queue holding copies of seed, in order, with the
// cursor on the first patient.
func NewController(seed []clinic.Patient, opts ...Option) *Controller {
	c := &Controller{
		patients: make([]clinic.Patient, 0, len(seed)),
		lastNo:   firstPatientNo,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, p := range seed {
		c.patients = append(c.patients, p.Clone())
		if n, ok := patientNo(p.ID); ok && n > c.lastNo {
			c.lastNo = n
		}
	}
	return c
}

// Register appends a new Ready patient with placeholder vitals. A blank
// name is a no-op and reports false.
func (c *Controller) Register(in Intake) (clinic.Patient, bool) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return clinic.Patient{}, false
	}

	age := in.Age
	if age <= 0 {
		age = minSimulatedAge + c.rng.IntN(simulatedAgeSpan)
	}
	gender := in.Gender
	if gender == "" {
		gender = clinic.GenderFemale
		if c.rng.IntN(2) == 1 {
			gender = clinic.GenderMale
		}
	}

	p := clinic.Patient{
		ID:        c.nextID(),
		Name:      name,
		Age:       age,
		Gender:    gender,
		Status:    clinic.StatusReady,
		History:   []string{},
		Phenotype: clinic.DefaultPhenotype(),
		Labs:      []clinic.LabResult{},
		Diagnosis: clinic.Unset(),
	}
	c.patients = append(c.patients, p)
	return p.Clone(), true
}

// Advance stores d on the current patient, marks it Complete and moves the
// cursor forward, wrapping at the end. The diagnosis and status land in a
// single assignment. It reports false on an empty queue.
func (c *Controller) Advance(d clinic.StructuredDiagnosis) (clinic.Patient, bool) {
	if len(c.patients) == 0 {
		return clinic.Patient{}, false
	}

	done := c.patients[c.cursor].Clone()
	done.Diagnosis = clinic.Structured(d)
	done.Status = clinic.StatusComplete
	c.patients[c.cursor] = done

	c.cursor = (c.cursor + 1) % len(c.patients)
	return done.Clone(), true
}

// SetStatus changes one patient's status regardless of the cursor and
// returns the previous value. Unknown ids report false and change nothing.
func (c *Controller) SetStatus(id string, status clinic.PatientStatus) (clinic.PatientStatus, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return "", false
	}
	old := c.patients[i].Status
	c.patients[i].Status = status
	return old, true
}

// Current returns the patient under the cursor, if any.
func (c *Controller) Current() (clinic.Patient, bool) {
	if len(c.patients) == 0 {
		return clinic.Patient{}, false
	}
	return c.patients[c.cursor].Clone(), true
}

func (c *Controller) Cursor() int {
	return c.cursor
}

func (c *Controller) Len() int {
	return len(c.patients)
}

// Patients returns a copy of the queue in order.
func (c *Controller) Patients() []clinic.Patient {
	out := make([]clinic.Patient, len(c.patients))
	for i, p := range c.patients {
		out[i] = p.Clone()
	}
	return out
}

func (c *Controller) Patient(id string) (clinic.Patient, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return clinic.Patient{}, false
	}
	return c.patients[i].Clone(), true
}

func (c *Controller) indexOf(id string) int {
	for i := range c.patients {
		if c.patients[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID hands out P-#### numbers above every number seen so far, skipping
// any id already in the queue.
func (c *Controller) nextID() string {
	for {
		c.lastNo++
		id := fmt.Sprintf("P-%04d", c.lastNo)
		if c.indexOf(id) < 0 {
			return id
		}
	}
}

func patientNo(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, "P-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
