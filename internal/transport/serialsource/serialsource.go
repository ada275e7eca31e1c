// Package serialsource adapts a line-oriented serial tracker device into
// pose admissions on a stream buffer.
package serialsource

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/plustoolkit/streambuffer/internal/monitoring"
	"github.com/plustoolkit/streambuffer/internal/stream/buffer"
)

// LineParser turns one line of raw device output into a pose admission.
// ok is false for lines that carry no pose (framing noise, acks, etc.).
type LineParser interface {
	ParsePoseLine(line string) (p buffer.PoseAdmission, ok bool, err error)
}

// Port is the minimal interface this package needs from a tracker device,
// implemented by both Device (a real go.bug.st/serial port) and MockPort
// (for tests).
type Port interface {
	Lines() <-chan string
	SendCommand(command string)
	Close() error
}

// MockPort replays lines from Data without touching real hardware.
type MockPort struct {
	Data     io.Reader
	LineChan chan string
}

// Lines implements Port.
func (m *MockPort) Lines() <-chan string {
	return m.LineChan
}

// SendCommand implements Port; it only logs, since a mock has nowhere to
// send a command.
func (m *MockPort) SendCommand(command string) {
	monitoring.Debugf("serialsource: mock port received command %q", command)
}

// Close implements Port.
func (m *MockPort) Close() error {
	return nil
}

// Run scans Data line by line and pushes each one to LineChan. Once Data is
// exhausted it keeps blocking until ctx is cancelled, then returns any scan
// error.
func (m *MockPort) Run(ctx context.Context) error {
	scan := bufio.NewScanner(m.Data)
	for scan.Scan() {
		select {
		case m.LineChan <- scan.Text():
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return scan.Err()
}

// Device is a real tracker connected over a serial line.
type Device struct {
	port     serial.Port
	lines    chan string
	commands chan string
}

// Open opens portName at the given baud rate with 8N1 framing.
func Open(portName string, baudRate int) (*Device, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("serialsource: open %s: %w", portName, err)
	}
	return &Device{
		port:     port,
		lines:    make(chan string),
		commands: make(chan string),
	}, nil
}

// Lines implements Port.
func (d *Device) Lines() <-chan string {
	return d.lines
}

// SendCommand implements Port.
func (d *Device) SendCommand(command string) {
	d.commands <- command
}

// Close implements Port.
func (d *Device) Close() error {
	return d.port.Close()
}

// Run reads from the device and writes scanned lines to the lines
// channel, interleaving any pending outbound commands, until ctx is
// cancelled.
func (d *Device) Run(ctx context.Context) error {
	defer d.Close()
	scan := bufio.NewScanner(d.port)

	for {
		select {
		case <-ctx.Done():
			return nil
		case command := <-d.commands:
			if _, err := d.port.Write([]byte(command)); err != nil {
				monitoring.Logf("serialsource: error writing command to port: %v", err)
			}
		default:
			if !scan.Scan() {
				return scan.Err()
			}
			line := scan.Text()
			select {
			case d.lines <- line:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Pump reads pose lines from port, parses them with parser, and admits
// every successfully parsed pose into buf. It runs until ctx is
// cancelled or the port's line channel closes. Parse errors are logged
// and skipped rather than aborting the pump.
func Pump(ctx context.Context, port Port, parser LineParser, buf *buffer.Buffer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, open := <-port.Lines():
			if !open {
				return nil
			}
			pose, ok, err := parser.ParsePoseLine(line)
			if err != nil {
				monitoring.Logf("serialsource: failed to parse line %q: %v", line, err)
				continue
			}
			if !ok {
				continue
			}
			if _, err := buf.AddPose(pose); err != nil {
				monitoring.Debugf("serialsource: pose admission rejected: %v", err)
			}
		}
	}
}

