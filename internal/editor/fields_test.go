package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenameFrameField_OnlyFramesCarryingIt(t *testing.T) {
	l := &TrackedFrameList{}
	f1 := NewTrackedFrame()
	f1.Fields["Old"] = "1"
	f2 := NewTrackedFrame()
	f2.Fields["Other"] = "2"
	l.Frames = []*TrackedFrame{f1, f2}

	l.RenameFrameField("Old", "New")

	require.Equal(t, "1", f1.Fields["New"])
	_, ok := f1.Fields["Old"]
	require.False(t, ok)
	require.Equal(t, "2", f2.Fields["Other"])
}

func TestSetFrameFieldValue_LiteralAppliesToEveryFrame(t *testing.T) {
	l := &TrackedFrameList{Frames: []*TrackedFrame{NewTrackedFrame(), NewTrackedFrame()}}
	require.NoError(t, l.SetFrameFieldValue("Probe", "US", LiteralValue{}))
	for _, f := range l.Frames {
		require.Equal(t, "US", f.Fields["Probe"])
	}
}

func TestDeleteFrameField_RemovesFromAllFrames(t *testing.T) {
	f1 := NewTrackedFrame()
	f1.Fields["Drop"] = "x"
	f2 := NewTrackedFrame()
	l := &TrackedFrameList{Frames: []*TrackedFrame{f1, f2}}

	l.DeleteFrameField("Drop")
	_, ok := f1.Fields["Drop"]
	require.False(t, ok)
}
