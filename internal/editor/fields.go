package editor

import "fmt"

// RenameFrameField renames a per-frame custom field on every frame that
// carries it.
func (l *TrackedFrameList) RenameFrameField(oldName, newName string) {
	for _, f := range l.Frames {
		if v, ok := f.Fields[oldName]; ok {
			delete(f.Fields, oldName)
			f.Fields[newName] = v
		}
	}
}

// SetFrameFieldValue sets fieldName on every frame to the string that
// expand.Resolve returns for value. Any per-frame expansion of the
// "{frame-scalar}" and "{frame-transform}" sentinels is up to the
// FieldValueExpansion passed in; the only one in this package,
// LiteralValue, performs no expansion.
func (l *TrackedFrameList) SetFrameFieldValue(fieldName, value string, expand FieldValueExpansion) error {
	for i, f := range l.Frames {
		v, err := expand.Resolve(i, f, value)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		f.Fields[fieldName] = v
	}
	return nil
}

// DeleteFrameField deletes a per-frame custom field from every frame that
// carries it.
func (l *TrackedFrameList) DeleteFrameField(fieldName string) {
	for _, f := range l.Frames {
		delete(f.Fields, fieldName)
	}
}

// FieldValueExpansion resolves a field-value argument to a concrete
// per-frame string. Implementations decide how, if at all, the
// "{frame-scalar}" and "{frame-transform}" sentinels are expanded.
type FieldValueExpansion interface {
	Resolve(frameIndex int, f *TrackedFrame, raw string) (string, error)
}

// LiteralValue is a FieldValueExpansion that returns raw unchanged,
// ignoring the sentinel syntax. Used by the streambuffer-editor
// update-field operation.
type LiteralValue struct{}

// Resolve implements FieldValueExpansion.
func (LiteralValue) Resolve(_ int, _ *TrackedFrame, raw string) (string, error) {
	return raw, nil
}
