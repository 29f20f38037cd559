package attribution

import (
	"strings"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/model"
)

// Classifier decides who authored a chat message.
type Classifier struct {
	identities *IdentityMap
}

// NewClassifier creates a classifier backed by the given identity map.
func NewClassifier(identities *IdentityMap) *Classifier {
	return &Classifier{identities: identities}
}

// Classify returns the sender type of msg within chat. Rules are applied in
// order; the first that fires decides:
//
//  1. body matches a system pattern -> system
//  2. sender id or name is a known agent -> agent
//  3. Source is contact/customer -> customer
//  4. the last assigned member is a known agent -> agent
//  5. Source names an agent or member -> agent
//  6. customer
func (c *Classifier) Classify(chat *model.Chat, msg *model.ChatMessage) model.SenderType {
	if msg == nil {
		return model.SenderCustomer
	}

	if IsSystemMessage(msg.Content) {
		return model.SenderSystem
	}

	if sender := msg.SenderBlock(); sender != nil {
		if _, ok := c.identities.Lookup(sender.ID); ok {
			return model.SenderAgent
		}
		if _, ok := c.identities.MatchName(sender.Name); ok {
			return model.SenderAgent
		}
		if _, ok := c.identities.MatchName(sender.DisplayName); ok {
			return model.SenderAgent
		}
	}

	source := normalizeSource(msg.Source)
	if source == "contact" || source == "customer" {
		return model.SenderCustomer
	}

	if chat != nil && chat.LastOrganizationMember != nil {
		if _, ok := c.identities.Lookup(chat.LastOrganizationMember.ID); ok {
			return model.SenderAgent
		}
	}

	if isAgentSource(source) {
		return model.SenderAgent
	}

	return model.SenderCustomer
}

func normalizeSource(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}

func isAgentSource(source string) bool {
	switch source {
	case "agent", "member", "organizationmember":
		return true
	}
	return strings.Contains(source, "member") || strings.Contains(source, "agent")
}
