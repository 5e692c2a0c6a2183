package model

import "fmt"

// Behavior is the set of system-managed columns a table carries.
type Behavior uint8

const (
	// CreationTime adds a ctime column set to the current time.
	CreationTime Behavior = 1 << iota
	// ExternalID adds a web_id column set to a fresh UUIDv7.
	ExternalID
)

const (
	columnID           = "id"
	columnCreationTime = "ctime"
	columnExternalID   = "web_id"
)

// Has reports whether every flag in f is set.
func (b Behavior) Has(f Behavior) bool {
	return b&f == f
}

// inject appends the managed columns for b after the caller's fields. Any
// caller-supplied value for a managed column is discarded.
func (m *Manager) inject(b Behavior, fields Fields) (Fields, error) {
	out := fields.without(columnCreationTime, columnExternalID)
	if b.Has(CreationTime) {
		out = append(out, Field{Column: columnCreationTime, Value: FormatTimestamp(m.now())})
	}
	if b.Has(ExternalID) {
		id, err := m.newID()
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", columnExternalID, err)
		}
		out = append(out, Field{Column: columnExternalID, Value: id.String()})
	}
	return out, nil
}
