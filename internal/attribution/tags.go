package attribution

import "strings"

// RemovePrefix marks a tag change as a removal.
const RemovePrefix = "REMOVE:"

// TagChange is a decoded tag mutation.
type TagChange struct {
	Tag    string
	Remove bool
}

// DetectTags scans body for tag announcements and appends every payload tag
// as an addition. Removals are returned as RemovePrefix + name. The result is
// never nil.
func DetectTags(body string, payloadTags []string) []string {
	changes := make([]string, 0, len(payloadTags)+2)

	if tag, ok := firstCapture(tagAddedPatterns, body); ok {
		changes = append(changes, tag)
	}
	if tag, ok := firstCapture(tagRemovedPatterns, body); ok {
		changes = append(changes, RemovePrefix+tag)
	}

	for _, tag := range payloadTags {
		if tag = strings.TrimSpace(tag); tag != "" {
			changes = append(changes, tag)
		}
	}
	return changes
}

// ParseTagChange decodes one entry returned by DetectTags.
func ParseTagChange(s string) (TagChange, bool) {
	remove := strings.HasPrefix(s, RemovePrefix)
	tag := strings.TrimSpace(strings.TrimPrefix(s, RemovePrefix))
	if tag == "" {
		return TagChange{}, false
	}
	return TagChange{Tag: tag, Remove: remove}, true
}

// DetectClosure reports whether body announces that the chat was closed and,
// when the announcement names them, who closed it.
func DetectClosure(body string) (closed bool, by string) {
	if by, ok := firstCapture(closurePatterns, body); ok {
		return true, by
	}
	return false, ""
}
