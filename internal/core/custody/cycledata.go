package custody

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// slotObject is the richer at-rest shape of a cycle day.
type slotObject struct {
	ParentLabel      string            `json:"parent_label,omitempty"`
	ParentLabelCamel string            `json:"parentLabel,omitempty"`
	Allocations      []allocationValue `json:"allocations,omitempty"`
}

// allocationValue accepts every key spelling a stored allocation has been
// written with: {"childId","parent"} from the app and
// {"child_id","parent_label"} from hand-written cycle files.
type allocationValue struct {
	ChildID          string `json:"childId,omitempty"`
	ChildIDSnake     string `json:"child_id,omitempty"`
	Parent           string `json:"parent,omitempty"`
	ParentLabel      string `json:"parent_label,omitempty"`
	ParentLabelCamel string `json:"parentLabel,omitempty"`
}

func (a allocationValue) normalize() Allocation {
	return Allocation{
		ChildID:     firstNonEmpty(a.ChildID, a.ChildIDSnake),
		ParentLabel: firstNonEmpty(a.Parent, a.ParentLabel, a.ParentLabelCamel),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DecodeCycleData normalizes stored cycle_data into slots. Each element is
// either a bare label string or an object carrying parent_label and
// per-child allocations. Elements of any other shape become empty slots
// (no assignment) so one bad day never hides the rest of the cycle.
func DecodeCycleData(raw []byte) ([]Slot, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("cycle data must be a JSON array: %w", err)
	}

	slots := make([]Slot, len(elems))
	for i, elem := range elems {
		slots[i] = decodeSlot(elem)
	}
	return slots, nil
}

func decodeSlot(elem json.RawMessage) Slot {
	trimmed := bytes.TrimSpace(elem)
	if len(trimmed) == 0 {
		return Slot{}
	}

	switch trimmed[0] {
	case '"':
		var label string
		if err := json.Unmarshal(trimmed, &label); err != nil {
			return Slot{}
		}
		return Slot{ParentLabel: label}
	case '{':
		var obj slotObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Slot{}
		}
		slot := Slot{ParentLabel: firstNonEmpty(obj.ParentLabel, obj.ParentLabelCamel)}
		for _, v := range obj.Allocations {
			// Allocations naming no child can never match one.
			if a := v.normalize(); a.ChildID != "" {
				slot.Allocations = append(slot.Allocations, a)
			}
		}
		return slot
	default:
		return Slot{}
	}
}

// EncodeCycleData writes slots back to the at-rest shape: a bare string
// for plain days, an object when per-child allocations are present.
// Allocations are written as {"childId","parent"}.
func EncodeCycleData(slots []Slot) ([]byte, error) {
	elems := make([]any, len(slots))
	for i, s := range slots {
		if len(s.Allocations) == 0 {
			elems[i] = s.ParentLabel
			continue
		}
		obj := slotObject{ParentLabel: s.ParentLabel}
		for _, a := range s.Allocations {
			obj.Allocations = append(obj.Allocations, allocationValue{ChildID: a.ChildID, Parent: a.ParentLabel})
		}
		elems[i] = obj
	}
	return json.Marshal(elems)
}
