package custody

// Resolver maps stored assignment values into the role-label space and
// into labels relative to the viewing guardian. Some historical cycles
// store guardian identifiers instead of role labels; both encodings
// resolve to the same label.
type Resolver struct {
	viewerLabel  string
	partnerLabel string
	labelByID    map[string]string
	knownLabels  map[string]bool
}

// NewResolver builds a Resolver from the family's guardians. viewerID is
// the guardian evaluating the schedule. In solo families the partner
// label is empty.
func NewResolver(guardians []Guardian, viewerID string) Resolver {
	r := Resolver{
		labelByID:   make(map[string]string, len(guardians)),
		knownLabels: make(map[string]bool, len(guardians)),
	}
	for _, g := range guardians {
		r.labelByID[g.ID] = g.Label
		r.knownLabels[g.Label] = true
		if g.ID == viewerID {
			r.viewerLabel = g.Label
		} else if r.partnerLabel == "" {
			r.partnerLabel = g.Label
		}
	}
	return r
}

// ViewerLabel returns the viewing guardian's role label.
func (r Resolver) ViewerLabel() string {
	return r.viewerLabel
}

// PartnerLabel returns the co-guardian's role label ("" in solo mode).
func (r Resolver) PartnerLabel() string {
	return r.partnerLabel
}

// LabelForID returns the role label of the guardian with id.
func (r Resolver) LabelForID(id string) (string, bool) {
	label, ok := r.labelByID[id]
	return label, ok
}

// IsKnownLabel reports whether label belongs to a family guardian.
func (r Resolver) IsKnownLabel(label string) bool {
	return r.knownLabels[label]
}

// Canonical converts an assignment value to a role label. Guardian
// identifiers map to their label; role labels and Split pass through.
func (r Resolver) Canonical(value string) string {
	if value == "" || value == Split {
		return value
	}
	if label, ok := r.labelByID[value]; ok {
		return label
	}
	return value
}

// Resolve converts an assignment value to the viewer-relative label:
// Me, the partner's role label, Split, or the value itself when it
// matches no guardian.
func (r Resolver) Resolve(value string) string {
	label := r.Canonical(value)
	switch {
	case label == Split:
		return Split
	case label != "" && label == r.viewerLabel:
		return Me
	default:
		return label
	}
}

// IsMe reports whether value resolves to the viewing guardian.
func (r Resolver) IsMe(value string) bool {
	return r.Resolve(value) == Me
}

// IsMine reports whether value puts the child with the viewer, counting
// Split days as the viewer's.
func (r Resolver) IsMine(value string) bool {
	v := r.Resolve(value)
	return v == Me || v == Split
}
