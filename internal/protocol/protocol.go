// Package protocol defines the macro buffer commands exchanged with the
// keyboard and a retrying request/response transport.
//
// Every request and response is one fixed-size report. Multi-byte fields are
// big-endian.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Command bytes of the macro buffer requests.
const (
	CmdMacroGetCount      byte = 0x0C
	CmdMacroGetBufferSize byte = 0x0D
	CmdMacroGetBuffer     byte = 0x0E
	CmdMacroSetBuffer     byte = 0x0F
)

const (
	// ReportLen is the size of every request and response report.
	ReportLen = 32
	// ChunkSize is the number of buffer bytes moved per GET_BUFFER or
	// SET_BUFFER request.
	ChunkSize = 28
	// DefaultRetries is the attempt budget of one round trip.
	DefaultRetries = 20

	bufferHeaderLen = 4
)

// ErrTransport marks a failed round trip: retries exhausted, device gone or
// an unusable response. The device state is unknown afterwards.
var ErrTransport = errors.New("transport failure")

// CommandName returns a stable label for a command byte.
func CommandName(cmd byte) string {
	switch cmd {
	case CmdMacroGetCount:
		return "macro_get_count"
	case CmdMacroGetBufferSize:
		return "macro_get_buffer_size"
	case CmdMacroGetBuffer:
		return "macro_get_buffer"
	case CmdMacroSetBuffer:
		return "macro_set_buffer"
	default:
		return fmt.Sprintf("cmd_0x%02X", cmd)
	}
}

// GetCount builds the macro count request.
func GetCount() []byte {
	return []byte{CmdMacroGetCount}
}

// GetBufferSize builds the macro buffer size request.
func GetBufferSize() []byte {
	return []byte{CmdMacroGetBufferSize}
}

// GetBuffer builds a request for size bytes at offset.
func GetBuffer(offset uint16, size byte) []byte {
	msg := make([]byte, bufferHeaderLen)
	msg[0] = CmdMacroGetBuffer
	binary.BigEndian.PutUint16(msg[1:3], offset)
	msg[3] = size
	return msg
}

// SetBuffer builds a request storing chunk at offset. chunk must not exceed
// ChunkSize.
func SetBuffer(offset uint16, chunk []byte) ([]byte, error) {
	if len(chunk) > ChunkSize {
		return nil, fmt.Errorf("chunk of %d bytes exceeds %d", len(chunk), ChunkSize)
	}
	msg := make([]byte, bufferHeaderLen, bufferHeaderLen+len(chunk))
	msg[0] = CmdMacroSetBuffer
	binary.BigEndian.PutUint16(msg[1:3], offset)
	msg[3] = byte(len(chunk))
	return append(msg, chunk...), nil
}

// ParseCount extracts the macro count from a GET_COUNT response.
func ParseCount(resp []byte) (byte, error) {
	if len(resp) < 2 {
		return 0, fmt.Errorf("%w: macro count response has %d bytes", ErrTransport, len(resp))
	}
	return resp[1], nil
}

// ParseBufferSize extracts the macro memory size from a GET_BUFFER_SIZE
// response.
func ParseBufferSize(resp []byte) (uint16, error) {
	if len(resp) < 3 {
		return 0, fmt.Errorf("%w: buffer size response has %d bytes", ErrTransport, len(resp))
	}
	return binary.BigEndian.Uint16(resp[1:3]), nil
}

// ParseBuffer returns the size payload bytes of a GET_BUFFER response.
func ParseBuffer(resp []byte, size int) ([]byte, error) {
	end := bufferHeaderLen + size
	if len(resp) < end {
		return nil, fmt.Errorf("%w: buffer response has %d bytes, need %d", ErrTransport, len(resp), end)
	}
	return resp[bufferHeaderLen:end], nil
}

// Request is a decoded request, as seen by a device.
type Request struct {
	Command byte
	Offset  uint16
	Size    byte
	Payload []byte
}

// ParseRequest decodes a request report.
func ParseRequest(msg []byte) (Request, error) {
	if len(msg) == 0 {
		return Request{}, errors.New("empty request")
	}
	req := Request{Command: msg[0]}
	switch req.Command {
	case CmdMacroGetBuffer, CmdMacroSetBuffer:
		if len(msg) < bufferHeaderLen {
			return Request{}, fmt.Errorf("%s request truncated: %d bytes", CommandName(req.Command), len(msg))
		}
		req.Offset = binary.BigEndian.Uint16(msg[1:3])
		req.Size = msg[3]
	}
	if req.Command == CmdMacroSetBuffer {
		end := bufferHeaderLen + int(req.Size)
		if end > len(msg) {
			return Request{}, fmt.Errorf("set buffer payload truncated: %d of %d bytes", len(msg)-bufferHeaderLen, req.Size)
		}
		req.Payload = msg[bufferHeaderLen:end]
	}
	return req, nil
}
