package attribution

import (
	"strings"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
)

// UnknownAgent is the name used when no heuristic identifies the agent.
const UnknownAgent = "Attendant"

// Strategy is one agent identification heuristic. It reports false when the
// payload does not carry the information it looks for.
type Strategy func(chat *model.Chat, msg *model.ChatMessage) (AgentIdentity, bool)

// Resolver tries its strategies in order and returns the first success.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a resolver with the default strategy chain.
func NewResolver(identities *IdentityMap) *Resolver {
	return NewResolverWith(
		LastAssignedMember(identities),
		SenderWhenAgent(identities),
		AssignedMember(identities),
		Sector(),
		FirstRosterEntry(identities),
	)
}

// NewResolverWith creates a resolver from an explicit strategy chain.
func NewResolverWith(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns the agent responsible for chat. It always returns a
// non-empty name; a strategy that panics is skipped.
func (r *Resolver) Resolve(chat *model.Chat, msg *model.ChatMessage) AgentIdentity {
	if chat == nil {
		chat = &model.Chat{}
	}
	for _, strategy := range r.strategies {
		if ident, ok := try(strategy, chat, msg); ok && ident.Name != "" {
			return ident
		}
	}
	return newIdentity(UnknownAgent, "")
}

func try(strategy Strategy, chat *model.Chat, msg *model.ChatMessage) (ident AgentIdentity, ok bool) {
	defer func() {
		if recover() != nil {
			ident, ok = AgentIdentity{}, false
		}
	}()
	return strategy(chat, msg)
}

// LastAssignedMember resolves Chat.LastOrganizationMember.
func LastAssignedMember(identities *IdentityMap) Strategy {
	return func(chat *model.Chat, _ *model.ChatMessage) (AgentIdentity, bool) {
		return resolveMember(identities, chat, chat.LastOrganizationMember)
	}
}

// AssignedMember resolves Chat.OrganizationMember.
func AssignedMember(identities *IdentityMap) Strategy {
	return func(chat *model.Chat, _ *model.ChatMessage) (AgentIdentity, bool) {
		return resolveMember(identities, chat, chat.OrganizationMember)
	}
}

// resolveMember names a member reference: identity map first, then the
// roster entry, then the inline block, then a synthesized "Agent-<id>".
func resolveMember(identities *IdentityMap, chat *model.Chat, ref *model.Member) (AgentIdentity, bool) {
	if ref == nil {
		return AgentIdentity{}, false
	}
	id := strings.TrimSpace(ref.ID)

	if name, ok := identities.Lookup(id); ok {
		return newIdentity(name, id), true
	}
	if id != "" {
		if m, ok := chat.FindMember(id); ok && m.Label() != "" {
			return newIdentity(m.Label(), id), true
		}
	}
	if label := ref.Label(); label != "" {
		return newIdentity(label, id), true
	}
	if id != "" {
		return newIdentity("Agent-"+id, id), true
	}
	return AgentIdentity{}, false
}

// SenderWhenAgent uses the message author when Source marks it as an agent.
func SenderWhenAgent(identities *IdentityMap) Strategy {
	return func(_ *model.Chat, msg *model.ChatMessage) (AgentIdentity, bool) {
		if msg == nil || !isAgentSource(normalizeSource(msg.Source)) {
			return AgentIdentity{}, false
		}
		sender := msg.SenderBlock()
		if sender == nil {
			return AgentIdentity{}, false
		}
		id := strings.TrimSpace(sender.ID)
		if name, ok := identities.Lookup(id); ok {
			return newIdentity(name, id), true
		}
		if label := sender.Label(); label != "" {
			return newIdentity(label, id), true
		}
		return AgentIdentity{}, false
	}
}

// Sector uses the free-text Setor field.
func Sector() Strategy {
	return func(chat *model.Chat, _ *model.ChatMessage) (AgentIdentity, bool) {
		if s := chat.Setor.String(); s != "" {
			return newIdentity(s, ""), true
		}
		return AgentIdentity{}, false
	}
}

// FirstRosterEntry prefers the first roster member known to the identity map
// and otherwise uses the first entry that has a name or id.
func FirstRosterEntry(identities *IdentityMap) Strategy {
	return func(chat *model.Chat, _ *model.ChatMessage) (AgentIdentity, bool) {
		for _, m := range chat.OrganizationMembers {
			if name, ok := identities.Lookup(m.ID); ok {
				return newIdentity(name, m.ID), true
			}
		}
		for _, m := range chat.OrganizationMembers {
			if label := m.Label(); label != "" {
				return newIdentity(label, m.ID), true
			}
			if id := strings.TrimSpace(m.ID); id != "" {
				return newIdentity(id, id), true
			}
		}
		return AgentIdentity{}, false
	}
}
