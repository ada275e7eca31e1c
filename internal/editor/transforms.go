package editor

import (
	"fmt"
	"strings"

	"github.com/plustoolkit/streambuffer/internal/monitoring"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
)

// TransformRepository resolves a named transform to a matrix, used by
// AddDerivedTransform to compose a chain of tool-to-tool transforms not
// directly present on a frame.
type TransformRepository interface {
	GetTransform(name string) (frame.Matrix4x4, frame.ToolStatus, error)
}

// MultiplyMatrix4x4 returns a*b.
func MultiplyMatrix4x4(a, b frame.Matrix4x4) frame.Matrix4x4 {
	var out frame.Matrix4x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// AddDerivedTransform computes destName as the product of the transforms
// named in chain (applied left to right, chain[0] innermost) and stores it
// on every frame. Lookups that miss the frame's own Transforms map fall
// back to repo when non-nil. On failure to resolve any link, the frame's
// transform is set to identity with status Invalid rather than left
// unset, so downstream consumers always find the key present.
func (l *TrackedFrameList) AddDerivedTransform(destName string, chain []string, repo TransformRepository) {
	for _, f := range l.Frames {
		result := frame.Identity()
		ok := true
		for _, name := range chain {
			m, status, err := lookupTransform(f, name, repo)
			if err != nil || status != frame.StatusOk {
				ok = false
				break
			}
			result = MultiplyMatrix4x4(m, result)
		}
		if !ok {
			f.Transforms[destName] = frame.Identity()
			f.Status[destName] = frame.StatusInvalid
			continue
		}
		f.Transforms[destName] = result
		f.Status[destName] = frame.StatusOk
	}
}

func lookupTransform(f *TrackedFrame, name string, repo TransformRepository) (frame.Matrix4x4, frame.ToolStatus, error) {
	if m, ok := f.Transforms[name]; ok {
		return m, f.Status[name], nil
	}
	if repo != nil {
		return repo.GetTransform(name)
	}
	return frame.Matrix4x4{}, frame.StatusMissing, fmt.Errorf("transform %q not found", name)
}

// RewriteReferenceTransforms rewrites every ToolToReference-style transform
// on each frame into a ToolToTracker transform, computed as
// referenceToTracker * toolToReference, where referenceToTracker is the
// transform named referenceTransformName on that frame. Frames lacking
// referenceTransformName are skipped with a warning. The transform
// referenceTransformName itself is left untouched; every other transform
// on the frame is replaced, and its old field (the transform name with
// "Transform" appended unless it already ends that way) is deleted together
// with that field's paired "...Status" field.
func (l *TrackedFrameList) RewriteReferenceTransforms(referenceTransformName string) {
	for i, f := range l.Frames {
		referenceToTracker, ok := f.Transforms[referenceTransformName]
		if !ok {
			monitoring.Logf("editor: frame %d: reference transform %q not found, skipping", i, referenceTransformName)
			continue
		}

		names := make([]string, 0, len(f.Transforms))
		for name := range f.Transforms {
			names = append(names, name)
		}

		for _, name := range names {
			if name == referenceTransformName {
				continue
			}
			toolToReference := f.Transforms[name]
			status := f.Status[name]

			toolToTrackerName := toolTrackerName(name)
			f.Transforms[toolToTrackerName] = MultiplyMatrix4x4(referenceToTracker, toolToReference)
			f.Status[toolToTrackerName] = status

			oldFieldName := name
			if !strings.HasSuffix(oldFieldName, "Transform") {
				oldFieldName += "Transform"
			}
			delete(f.Fields, oldFieldName)
			delete(f.Fields, oldFieldName+"Status")
			delete(f.Transforms, name)
			delete(f.Status, name)
		}
	}
}

// toolTrackerName rewrites a "XToY" transform name to "XToTracker",
// preserving everything before the first "To".
func toolTrackerName(name string) string {
	if idx := strings.Index(name, "To"); idx >= 0 {
		return name[:idx] + "ToTracker"
	}
	return name + "ToTracker"
}
