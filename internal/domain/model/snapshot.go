package model

// Snapshot is the set of field values last received from the device. It is a
// plain value: derivations never mutate it, and a new snapshot either replaces
// the previous one or is merged into a copy of it.
type Snapshot map[Field]int64

// Value returns the raw value of a field and whether it is present.
func (s Snapshot) Value(f Field) (int64, bool) {
	v, ok := s[f]
	return v, ok
}

// ValueOr returns the raw value of a field, or fallback when absent.
func (s Snapshot) ValueOr(f Field, fallback int64) int64 {
	if v, ok := s[f]; ok {
		return v
	}
	return fallback
}

// Has reports whether every given field is present.
func (s Snapshot) Has(fields ...Field) bool {
	for _, f := range fields {
		if _, ok := s[f]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a copy of the snapshot with the partial update applied.
// Fields absent from the update keep their current values.
func (s Snapshot) Merge(update Snapshot) Snapshot {
	out := s.Clone()
	for k, v := range update {
		out[k] = v
	}
	return out
}

// Command is a set of field values to send to the device.
type Command map[Field]int64
