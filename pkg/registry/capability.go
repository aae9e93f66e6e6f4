package registry

import "fmt"

// Capability describes one skill an agent offers, with a proficiency
// between 0 and 1 and the tools the skill depends on.
type Capability struct {
	Name          string
	Description   string
	Proficiency   float64
	RequiredTools []string
}

// NewCapability builds a capability value. Proficiency outside [0,1]
// is rejected.
func NewCapability(name, description string, proficiency float64, tools ...string) (Capability, error) {
	if name == "" {
		return Capability{}, fmt.Errorf("capability name: %w", ErrEmptyArgument)
	}
	if proficiency < 0 || proficiency > 1 {
		return Capability{}, fmt.Errorf("capability %q proficiency %v: %w", name, proficiency, ErrInvalidProficiency)
	}
	c := Capability{
		Name:        name,
		Description: description,
		Proficiency: proficiency,
	}
	if len(tools) > 0 {
		c.RequiredTools = make([]string, len(tools))
		copy(c.RequiredTools, tools)
	}
	return c, nil
}

// MustCapability is NewCapability for static capability tables; it
// panics on invalid input.
func MustCapability(name, description string, proficiency float64, tools ...string) Capability {
	c, err := NewCapability(name, description, proficiency, tools...)
	if err != nil {
		panic(err)
	}
	return c
}
