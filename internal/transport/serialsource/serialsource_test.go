package serialsource

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plustoolkit/streambuffer/internal/config"
	"github.com/plustoolkit/streambuffer/internal/stream/buffer"
	"github.com/plustoolkit/streambuffer/internal/stream/frame"
)

type fixedParser struct{}

func (fixedParser) ParsePoseLine(line string) (buffer.PoseAdmission, bool, error) {
	if !strings.HasPrefix(line, "POSE") {
		return buffer.PoseAdmission{}, false, nil
	}
	filtered := 0.0
	return buffer.PoseAdmission{
		Matrix:     frame.Identity(),
		Status:     frame.StatusOk,
		FilteredTS: &filtered,
	}, true, nil
}

func TestPump_AdmitsParsedPoseLines(t *testing.T) {
	cap := uint32(4)
	cfg := &config.BufferConfig{Capacity: &cap}
	buf, err := buffer.New(cfg, frame.FrameFormat{})
	require.NoError(t, err)

	port := &MockPort{
		Data:     strings.NewReader("noise\nPOSE\n"),
		LineChan: make(chan string),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go port.Run(ctx)

	done := make(chan struct{})
	go func() {
		Pump(ctx, port, fixedParser{}, buf)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return buf.Size() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestMockPort_CloseIsNoop(t *testing.T) {
	port := &MockPort{}
	require.NoError(t, port.Close())
}
