package registry

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies what an agent is primarily for. The set is open:
// callers may introduce their own roles.
type Role string

const (
	RolePlanner    Role = "planner"
	RoleExecutor   Role = "executor"
	RoleCritic     Role = "critic"
	RoleGeneralist Role = "generalist"
)

// Identity is the immutable part of an agent: who it is and what it
// can do. With-style mutators return a copy; an Identity held by one
// goroutine is never changed underneath another.
type Identity struct {
	ID           string
	Name         string
	Role         Role
	Capabilities []Capability
	Metadata     map[string]string
	CreatedAt    time.Time
}

// IdentityOption configures NewIdentity.
type IdentityOption func(*Identity)

// WithID overrides the generated agent id.
func WithID(id string) IdentityOption {
	return func(ident *Identity) {
		ident.ID = id
	}
}

// WithCapabilities sets the declared capabilities. A later capability
// with the same name replaces an earlier one.
func WithCapabilities(caps ...Capability) IdentityOption {
	return func(ident *Identity) {
		for _, c := range caps {
			ident.Capabilities = upsertCapability(ident.Capabilities, c)
		}
	}
}

// WithMetadata attaches a metadata entry.
func WithMetadata(key, value string) IdentityOption {
	return func(ident *Identity) {
		if ident.Metadata == nil {
			ident.Metadata = make(map[string]string)
		}
		ident.Metadata[key] = value
	}
}

// NewIdentity creates an agent identity. The id defaults to
// "agent-<uuid>" unless WithID is given.
func NewIdentity(name string, role Role, opts ...IdentityOption) Identity {
	ident := Identity{
		ID:        "agent-" + uuid.New().String(),
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&ident)
	}
	return ident
}

// WithCapability returns a copy of the identity with the capability
// added, replacing any existing capability of the same name.
func (ident Identity) WithCapability(c Capability) Identity {
	next := ident.clone()
	next.Capabilities = upsertCapability(next.Capabilities, c)
	return next
}

// WithMeta returns a copy of the identity with the metadata entry set.
func (ident Identity) WithMeta(key, value string) Identity {
	next := ident.clone()
	if next.Metadata == nil {
		next.Metadata = make(map[string]string)
	}
	next.Metadata[key] = value
	return next
}

// HasCapability reports whether the identity declares the named
// capability.
func (ident Identity) HasCapability(name string) bool {
	for _, c := range ident.Capabilities {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ProficiencyFor returns the declared proficiency for the named
// capability, or 0 when the capability is absent.
func (ident Identity) ProficiencyFor(name string) float64 {
	for _, c := range ident.Capabilities {
		if c.Name == name {
			return c.Proficiency
		}
	}
	return 0
}

func (ident Identity) clone() Identity {
	next := ident
	if len(ident.Capabilities) > 0 {
		next.Capabilities = make([]Capability, len(ident.Capabilities))
		copy(next.Capabilities, ident.Capabilities)
	}
	if len(ident.Metadata) > 0 {
		next.Metadata = make(map[string]string, len(ident.Metadata))
		for k, v := range ident.Metadata {
			next.Metadata[k] = v
		}
	}
	return next
}

func upsertCapability(caps []Capability, c Capability) []Capability {
	for i, existing := range caps {
		if existing.Name == c.Name {
			out := make([]Capability, len(caps))
			copy(out, caps)
			out[i] = c
			return out
		}
	}
	return append(caps, c)
}
