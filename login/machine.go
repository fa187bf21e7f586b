package login

import (
	"context"
	"fmt"
	"strings"
	"sync"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
)

// SubmitFunc sends the payload of a step to the bridge and returns the status it answered with.
type SubmitFunc func(ctx context.Context, step Step, payload Payload) (Status, error)

// Machine drives a login flow. Only one step can be in flight at any time: submits issued while
// loading are rejected with ErrBusy.
type Machine struct {
	log bridgemanager.Logger
	def *Definition

	submit     SubmitFunc
	onLoggedIn func(ctx context.Context) error

	mu      sync.Mutex
	step    Step
	values  map[Step]map[string]string
	loading bool
	err     error
	done    bool
}

// Snapshot is a consistent copy of the machine state for rendering.
type Snapshot struct {
	Step      Step
	Spec      StepSpec
	Values    map[string]string
	Loading   bool
	Err       error
	Done      bool
	CanSubmit bool
}

// NewMachine creates a machine at the initial step of def. onLoggedIn is called exactly once,
// when the bridge reports that the account is linked.
func NewMachine(log bridgemanager.Logger, def *Definition, submit SubmitFunc, onLoggedIn func(ctx context.Context) error) (*Machine, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &Machine{
		log:        log.WithField("login", def.Service),
		def:        def,
		submit:     submit,
		onLoggedIn: onLoggedIn,
		step:       def.Initial,
		values:     map[Step]map[string]string{},
	}, nil
}

func (m *Machine) Definition() *Definition {
	return m.def
}

func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Machine) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Value returns the value entered for a field of the current step.
func (m *Machine) Value(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[m.step][name]
}

// SetValue stores the value of a field of the current step.
func (m *Machine) SetValue(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	spec, _ := m.def.Spec(m.step)
	if !hasField(spec, name) {
		return fmt.Errorf("step %s has no field %s", m.step, name)
	}

	stepValues, ok := m.values[m.step]
	if !ok {
		stepValues = map[string]string{}
		m.values[m.step] = stepValues
	}

	stepValues[name] = value
	return nil
}

// CanSubmit reports whether the submit control should be enabled.
func (m *Machine) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canSubmitLocked()
}

func (m *Machine) canSubmitLocked() bool {
	if m.loading || m.done {
		return false
	}

	spec, _ := m.def.Spec(m.step)
	_, err := m.payloadLocked(spec)
	return err == nil
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	spec, _ := m.def.Spec(m.step)
	values := make(map[string]string, len(spec.Fields))
	for _, field := range spec.Fields {
		values[field.Name] = m.values[m.step][field.Name]
	}

	return Snapshot{
		Step:      m.step,
		Spec:      spec,
		Values:    values,
		Loading:   m.loading,
		Err:       m.err,
		Done:      m.done,
		CanSubmit: m.canSubmitLocked(),
	}
}

// Switch moves to one of the alternatives of the current step. Entered values are kept.
func (m *Machine) Switch(step Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loading {
		return ErrBusy
	} else if m.done {
		return ErrDone
	}

	spec, _ := m.def.Spec(m.step)
	for _, alt := range spec.Alternatives {
		if alt.Step == step {
			m.log.Debugf("switching login step from %s to %s", m.step, step)
			m.step = step
			m.err = nil
			return nil
		}
	}

	return fmt.Errorf("cannot switch from %s to %s", m.step, step)
}

// Submit sends the current step. On failure the error is stored, the step is kept and the
// machine can be submitted again.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return ErrBusy
	} else if m.done {
		m.mu.Unlock()
		return ErrDone
	}

	step := m.step
	spec, _ := m.def.Spec(step)
	payload, err := m.payloadLocked(spec)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	m.loading = true
	m.err = nil
	m.mu.Unlock()

	err = m.advance(ctx, step, payload)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.loading = false
	m.err = err
	return err
}

func (m *Machine) advance(ctx context.Context, step Step, payload Payload) error {
	m.log.Debugf("submitting login step %s", step)

	status, err := m.submit(ctx, step, payload)
	if err != nil {
		return err
	}

	transition, err := m.def.Resolve(status)
	if err != nil {
		m.log.WithError(err).Errorf("cannot continue login after step %s", step)
		return err
	}

	if transition.SignedIn {
		m.mu.Lock()
		m.done = true
		m.mu.Unlock()

		m.log.Infof("login completed with status %s", status)
		if m.onLoggedIn != nil {
			if err := m.onLoggedIn(ctx); err != nil {
				return fmt.Errorf("failed refreshing %s after login: %w", m.def.Service, err)
			}
		}

		return nil
	}

	if _, ok := m.def.Spec(transition.Next); !ok {
		return fmt.Errorf("%s login moved to undefined step %s", m.def.Service, transition.Next)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// re-entering a step starts it over, everything else is kept
	delete(m.values, transition.Next)
	m.step = transition.Next

	m.log.Debugf("login moved to step %s (status %s)", transition.Next, status)
	return nil
}

func (m *Machine) payloadLocked(spec StepSpec) (Payload, error) {
	payload := Payload{}
	for _, field := range spec.Fields {
		value := m.values[spec.Step][field.Name]
		if field.Kind != FieldPassword {
			value = strings.TrimSpace(value)
		}

		if len(value) == 0 {
			return nil, &ValidationError{Field: field.Name, Reason: "required"}
		}

		switch field.Kind {
		case FieldNumber:
			// codes can start with zero, they are sent as strings
			if strings.IndexFunc(value, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
				return nil, &ValidationError{Field: field.Name, Reason: "must contain only digits"}
			}

			payload[field.Name] = value
		case FieldPhone:
			payload[field.Name] = strings.ReplaceAll(value, " ", "")
		default:
			payload[field.Name] = value
		}
	}

	return payload, nil
}

func hasField(spec StepSpec, name string) bool {
	for _, field := range spec.Fields {
		if field.Name == name {
			return true
		}
	}

	return false
}
