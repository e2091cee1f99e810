// Package auth carries the capability set granted to the running dashboard
// instance. Handlers receive a Permissions value explicitly instead of
// consulting ambient session state.
package auth

import "sort"

// Capability names one guarded dashboard action.
type Capability string

const (
	CapExport        Capability = "export"
	CapWriteViews    Capability = "views:write"
	CapWriteMappings Capability = "mappings:write"
)

// Permissions is an immutable capability set resolved at startup.
type Permissions struct {
	granted map[Capability]bool
}

// NewPermissions grants the listed capabilities.
func NewPermissions(caps ...Capability) Permissions {
	granted := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		granted[c] = true
	}
	return Permissions{granted: granted}
}

// Allows reports whether the capability was granted.
func (p Permissions) Allows(c Capability) bool {
	return p.granted[c]
}

// List returns the granted capabilities for status endpoints.
func (p Permissions) List() []string {
	out := make([]string, 0, len(p.granted))
	for c, ok := range p.granted {
		if ok {
			out = append(out, string(c))
		}
	}
	sort.Strings(out)
	return out
}
