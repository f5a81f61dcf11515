package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// PositionChange is a rank delta between two consecutive snapshots. It
// serializes as the literal string "new" for a contributor absent from the
// previous snapshot, otherwise as a signed integer (previous − current,
// positive = moved up).
type PositionChange struct {
	New   bool
	Delta int
}

// NewEntry marks a contributor that was not ranked in the previous snapshot.
func NewEntry() PositionChange {
	return PositionChange{New: true}
}

// Moved records a numeric rank delta.
func Moved(delta int) PositionChange {
	return PositionChange{Delta: delta}
}

func (p PositionChange) String() string {
	if p.New {
		return "new"
	}
	return fmt.Sprintf("%d", p.Delta)
}

// MarshalJSON emits "new" or the signed delta.
func (p PositionChange) MarshalJSON() ([]byte, error) {
	if p.New {
		return json.Marshal("new")
	}
	return json.Marshal(p.Delta)
}

// UnmarshalJSON accepts either the "new" marker or an integer.
func (p *PositionChange) UnmarshalJSON(data []byte) error {
	var marker string
	if err := json.Unmarshal(data, &marker); err == nil {
		if marker != "new" {
			return fmt.Errorf("unexpected position change marker %q", marker)
		}
		p.New = true
		p.Delta = 0
		return nil
	}

	var delta int
	if err := json.Unmarshal(data, &delta); err != nil {
		return fmt.Errorf("failed to decode position change: %w", err)
	}
	p.New = false
	p.Delta = delta
	return nil
}

// MarshalBSONValue stores the same representation in MongoDB documents.
func (p PositionChange) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.New {
		return bson.MarshalValue("new")
	}
	return bson.MarshalValue(int32(p.Delta))
}

// UnmarshalBSONValue reads back either representation.
func (p *PositionChange) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	if t == bsontype.String {
		marker, ok := raw.StringValueOK()
		if !ok || marker != "new" {
			return fmt.Errorf("unexpected position change marker in document")
		}
		p.New = true
		p.Delta = 0
		return nil
	}

	delta, ok := raw.AsInt64OK()
	if !ok {
		return fmt.Errorf("unexpected bson type %s for position change", t)
	}
	p.New = false
	p.Delta = int(delta)
	return nil
}
