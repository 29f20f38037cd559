// Package attribution classifies Umbler chat events: who sent a message,
// which agent owns the conversation, whether the customer came from the
// website, and which tag and closure announcements a message carries.
//
// Everything here is pure and never fails; malformed input degrades to a
// default value.
package attribution

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// IdentityMap maps organization member ids to agent display names. It is
// loaded once at startup and never mutated afterwards.
type IdentityMap struct {
	byID   map[string]string
	byName map[string]string
}

// NewIdentityMap builds an identity map from id -> name pairs. Blank ids and
// names are skipped.
func NewIdentityMap(names map[string]string) *IdentityMap {
	m := &IdentityMap{
		byID:   make(map[string]string, len(names)),
		byName: make(map[string]string, len(names)),
	}
	for id, name := range names {
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if id == "" || name == "" {
			continue
		}
		m.byID[id] = name
		m.byName[strings.ToLower(name)] = name
	}
	return m
}

// LoadIdentityMap reads a JSON object of id -> name from path. An empty path
// yields an empty map.
func LoadIdentityMap(path string) (*IdentityMap, error) {
	if path == "" {
		return NewIdentityMap(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attendants file: %w", err)
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse attendants file: %w", err)
	}

	return NewIdentityMap(names), nil
}

// Lookup returns the display name for a member id.
func (m *IdentityMap) Lookup(id string) (string, bool) {
	if m == nil || id == "" {
		return "", false
	}
	name, ok := m.byID[id]
	return name, ok
}

// MatchName reports whether name case-insensitively equals a known agent
// name, returning the canonical spelling.
func (m *IdentityMap) MatchName(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}
	canonical, ok := m.byName[name]
	return canonical, ok
}

// Len returns the number of known agents.
func (m *IdentityMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byID)
}

// AgentIdentity is the resolved agent responsible for a conversation.
// Channel and Attendant are set when Name has the "Channel - Attendant" form.
type AgentIdentity struct {
	Name      string
	ID        *string
	Channel   string
	Attendant string
}

var channelName = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)

// ParseChannel splits a "Channel - Attendant" name. Hyphens without
// surrounding spaces (e.g. "Agent-42", "Ana-Clara") are not separators.
func ParseChannel(name string) (channel, attendant string, ok bool) {
	m := channelName.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return "", "", false
	}
	channel = strings.TrimSpace(m[1])
	attendant = strings.TrimSpace(m[2])
	if channel == "" || attendant == "" {
		return "", "", false
	}
	return channel, attendant, true
}

func newIdentity(name, id string) AgentIdentity {
	ident := AgentIdentity{Name: strings.TrimSpace(name)}
	if id != "" {
		ident.ID = &id
	}
	ident.Channel, ident.Attendant, _ = ParseChannel(ident.Name)
	return ident
}
