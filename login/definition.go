package login

import (
	"fmt"
)

// Step is one stage of a bridge login, it is also the name of the endpoint it is submitted to.
type Step string

// Status is the token returned by the bridge after a step has been submitted.
type Status string

const (
	StatusLoggedIn        Status = "logged-in"
	StatusAlreadyLoggedIn Status = "already-logged-in"
)

// Payload is the JSON body submitted for a step.
type Payload map[string]any

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldPhone
	FieldNumber
	FieldPassword
)

type Field struct {
	// Name is the payload key.
	Name string
	// Label is shown as placeholder.
	Label string
	Kind  FieldKind
}

// Alternative is a step the user can switch to manually from another step.
type Alternative struct {
	Step  Step
	Label string
}

type StepSpec struct {
	Step        Step
	Prompt      []string
	Fields      []Field
	SubmitLabel string

	// Alternatives are the steps reachable without submitting, e.g. bot token instead of phone.
	Alternatives []Alternative

	// OAuth marks steps whose fields are filled by an authorization redirect.
	OAuth bool
	// QR marks steps that receive QR codes while the submit is in flight.
	QR bool
}

// Transition is where a status leads: either another step or the signed in state.
type Transition struct {
	Next     Step
	SignedIn bool
}

func SignedIn() Transition {
	return Transition{SignedIn: true}
}

func GoTo(step Step) Transition {
	return Transition{Next: step}
}

// Definition describes the login flow of a bridge.
type Definition struct {
	Service string
	Title   string
	Intro   string
	Initial Step
	Steps   []StepSpec

	// Resolve maps a status token to the next transition. It must return an error
	// (usually from UnknownStatus) for tokens it doesn't know.
	Resolve func(Status) (Transition, error)
}

func (d *Definition) Spec(step Step) (StepSpec, bool) {
	for _, spec := range d.Steps {
		if spec.Step == step {
			return spec, true
		}
	}

	return StepSpec{}, false
}

// Validate checks that the definition is internally consistent.
func (d *Definition) Validate() error {
	if d.Resolve == nil {
		return fmt.Errorf("%s login has no status resolver", d.Service)
	} else if _, ok := d.Spec(d.Initial); !ok {
		return fmt.Errorf("%s login initial step %s is not defined", d.Service, d.Initial)
	}

	for _, spec := range d.Steps {
		for _, alt := range spec.Alternatives {
			if _, ok := d.Spec(alt.Step); !ok {
				return fmt.Errorf("%s login step %s has undefined alternative %s", d.Service, spec.Step, alt.Step)
			}
		}
	}

	return nil
}
