// Package emulator implements the keyboard side of the macro buffer
// commands on an in-memory image. It satisfies protocol.Conn.
package emulator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ObiWanKeoni/vial-gui/internal/protocol"
)

// ErrDisconnected is returned by every I/O call after Disconnect.
var ErrDisconnected = errors.New("emulator: device disconnected")

// Device is an emulated keyboard macro store.
type Device struct {
	mu           sync.Mutex
	count        byte
	image        []byte
	pending      []byte
	requests     []protocol.Request
	failNext     int
	disconnected bool
}

// New returns a device with count macro slots and memory bytes of storage
// filled with fill.
func New(count byte, memory int, fill byte) *Device {
	image := make([]byte, memory)
	for i := range image {
		image[i] = fill
	}
	return &Device{count: count, image: image}
}

// NewWithImage returns a device whose storage is a copy of image.
func NewWithImage(count byte, image []byte) *Device {
	return &Device{count: count, image: append([]byte(nil), image...)}
}

// LoadFile reads a storage image from path. A missing file yields zeroed
// storage. The image is resized to memory bytes.
func LoadFile(path string, count byte, memory int) (*Device, error) {
	d := New(count, memory, 0)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d, nil
		}
		return nil, fmt.Errorf("read image: %w", err)
	}
	copy(d.image, data)
	return d, nil
}

// SaveFile writes the storage image to path.
func (d *Device) SaveFile(path string) error {
	d.mu.Lock()
	image := append([]byte(nil), d.image...)
	d.mu.Unlock()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, image, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// Image returns a copy of the storage.
func (d *Device) Image() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.image...)
}

// Requests returns every request received so far.
func (d *Device) Requests() []protocol.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]protocol.Request(nil), d.requests...)
}

// CountRequests returns how many requests with command cmd were received.
func (d *Device) CountRequests(cmd byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.requests {
		if r.Command == cmd {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (d *Device) ResetRequests() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = nil
}

// FailNext makes the next n writes fail.
func (d *Device) FailNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = n
}

// Disconnect makes every following call fail with ErrDisconnected.
func (d *Device) Disconnect() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnected = true
}

// Write implements protocol.Conn.
func (d *Device) Write(report []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disconnected {
		return 0, ErrDisconnected
	}
	if d.failNext > 0 {
		d.failNext--
		return 0, errors.New("emulator: injected write failure")
	}
	req, err := protocol.ParseRequest(report)
	if err != nil {
		return 0, err
	}
	d.requests = append(d.requests, req)
	d.pending = d.handle(req, report)
	return len(report), nil
}

// Read implements protocol.Conn.
func (d *Device) Read(report []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disconnected {
		return 0, ErrDisconnected
	}
	if d.pending == nil {
		return 0, nil
	}
	n := copy(report, d.pending)
	d.pending = nil
	return n, nil
}

// handle builds the response report. Like the firmware, it echoes the
// request and overwrites the reply fields.
func (d *Device) handle(req protocol.Request, report []byte) []byte {
	resp := make([]byte, protocol.ReportLen)
	copy(resp, report)
	switch req.Command {
	case protocol.CmdMacroGetCount:
		resp[1] = d.count
	case protocol.CmdMacroGetBufferSize:
		binary.BigEndian.PutUint16(resp[1:3], uint16(len(d.image)))
	case protocol.CmdMacroGetBuffer:
		start, end := d.span(req)
		copy(resp[4:], d.image[start:end])
	case protocol.CmdMacroSetBuffer:
		start, end := d.span(req)
		copy(d.image[start:end], req.Payload)
	default:
		resp[0] = 0xFF
	}
	return resp
}

// span clamps a request range to the image.
func (d *Device) span(req protocol.Request) (int, int) {
	start := min(int(req.Offset), len(d.image))
	end := min(start+int(req.Size), len(d.image))
	return start, end
}
