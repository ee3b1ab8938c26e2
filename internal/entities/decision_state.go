package entities

// DecisionState is the authorization outcome recorded for an application.
// The zero value is Denied so an unset decision never grants anything.
type DecisionState int

const (
	// Denied refuses the permission. New requests start here.
	Denied DecisionState = iota
	// OneShot grants the permission for the next use only. Expiry is up to the caller.
	OneShot
	// Persistent grants the permission until the decision is changed.
	Persistent
)

// Storage tags persisted in the permission_state column.
// These values must never change once written to disk.
const (
	TagOneShot    = "AllowOnce"
	TagPersistent = "Always"
	TagDenied     = "Block"
)

// Display labels shown by the decision editor.
const (
	LabelOneShot    = "Allow Once"
	LabelPersistent = "Always"
	LabelDenied     = "Block"
)

var decisionTags = map[DecisionState]string{
	OneShot:    TagOneShot,
	Persistent: TagPersistent,
	Denied:     TagDenied,
}

var tagDecisions = map[string]DecisionState{
	TagOneShot:    OneShot,
	TagPersistent: Persistent,
	TagDenied:     Denied,
}

var decisionLabels = map[DecisionState]string{
	OneShot:    LabelOneShot,
	Persistent: LabelPersistent,
	Denied:     LabelDenied,
}

var labelDecisions = map[string]DecisionState{
	LabelOneShot:    OneShot,
	LabelPersistent: Persistent,
	LabelDenied:     Denied,
}

// DecisionLabels returns the editor labels in menu order.
func DecisionLabels() []string {
	return []string{LabelOneShot, LabelPersistent, LabelDenied}
}

// Tag returns the storage tag for the state.
// Out-of-range values are stored as Denied.
func (d DecisionState) Tag() string {
	if tag, ok := decisionTags[d]; ok {
		return tag
	}
	return TagDenied
}

// Label returns the human-readable label for the state.
func (d DecisionState) Label() string {
	if label, ok := decisionLabels[d]; ok {
		return label
	}
	return LabelDenied
}

// String implements fmt.Stringer using the display label
func (d DecisionState) String() string {
	return d.Label()
}

// IsValid reports whether d is one of the three defined states
func (d DecisionState) IsValid() bool {
	_, ok := decisionTags[d]
	return ok
}

// ParseDecisionTag converts a persisted tag back into a DecisionState.
// Unknown or corrupt tags decode to Denied.
func ParseDecisionTag(tag string) DecisionState {
	if d, ok := tagDecisions[tag]; ok {
		return d
	}
	return Denied
}

// IsKnownDecisionTag reports whether tag is one of the persisted tags
func IsKnownDecisionTag(tag string) bool {
	_, ok := tagDecisions[tag]
	return ok
}

// ParseDecisionLabel resolves an editor label. Matching is exact and case-sensitive.
func ParseDecisionLabel(label string) (DecisionState, bool) {
	d, ok := labelDecisions[label]
	return d, ok
}
