package policygroup

import (
	"strings"
	"time"
)

// Action enumerates the operations a controller can request on a data item.
type Action string

const (
	ActionRead      Action = "read"
	ActionUse       Action = "use"
	ActionShare     Action = "share"
	ActionAggregate Action = "aggregate"
	ActionModify    Action = "modify"
)

// KnownAction reports whether a is one of the supported actions.
func KnownAction(a Action) bool {
	switch a {
	case ActionRead, ActionUse, ActionShare, ActionAggregate, ActionModify:
		return true
	}
	return false
}

// Constraints narrow when a policy group's permissions apply.
type Constraints struct {
	// Purpose, when set, must match the request's declared purpose
	// (case-insensitive substring or equality).
	Purpose string

	// Expiration, when set, voids the group's permissions from that instant.
	Expiration *time.Time

	// RequiresNotification attaches a notify obligation to every permit.
	RequiresNotification bool
}

// AIRestrictions capture the subject's stance on automated processing.
type AIRestrictions struct {
	AllowTraining bool
	Algorithm     string
}

// PolicyGroup is a named bundle of permissions, prohibitions, and constraints
// a data subject applies to one or more data items. The ID is opaque and
// stable across renames. Version increments on every update so decisions can
// cite the revision in force at decision time.
type PolicyGroup struct {
	ID             string
	SubjectID      string
	Name           string
	Description    string
	Permissions    map[Action]bool
	Prohibitions   map[Action]bool
	Constraints    Constraints
	AIRestrictions AIRestrictions
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy so evaluations read a consistent snapshot even
// while the owning subject edits the group.
func (g PolicyGroup) Clone() PolicyGroup {
	out := g
	out.Permissions = make(map[Action]bool, len(g.Permissions))
	for k, v := range g.Permissions {
		out.Permissions[k] = v
	}
	out.Prohibitions = make(map[Action]bool, len(g.Prohibitions))
	for k, v := range g.Prohibitions {
		out.Prohibitions[k] = v
	}
	if g.Constraints.Expiration != nil {
		exp := *g.Constraints.Expiration
		out.Constraints.Expiration = &exp
	}
	return out
}

// DataItem identifies a protected unit of data: either a property of the
// subject's singular person record, or a whole entity record.
type DataItem struct {
	// Property is the property name when the item is a person-record field.
	Property string

	// TableName and RecordID identify an entity record. Set together,
	// mutually exclusive with Property.
	TableName string
	RecordID  string
}

// IsEntity reports whether the item addresses an entity record.
func (d DataItem) IsEntity() bool { return d.TableName != "" }

// Key returns the canonical identity of the item within a source. Assignment
// deduplication and covering-group resolution both key on it.
func (d DataItem) Key() string {
	if d.IsEntity() {
		return "entity:" + strings.ToLower(d.TableName) + ":" + d.RecordID
	}
	return "property:" + strings.ToLower(d.Property)
}

// DataAssignment binds a data item held at a source to a policy group.
type DataAssignment struct {
	PolicyGroupID string
	Source        string
	Item          DataItem
}

// Key is the canonical identity of the assignment target {source, item}.
func (a DataAssignment) Key() string {
	return strings.ToLower(a.Source) + "|" + a.Item.Key()
}
