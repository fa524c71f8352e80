package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrUnknownFormat  = errors.New("capture: unknown sample format")
	ErrInvalidChannel = errors.New("capture: invalid channel")
	ErrInvalidSample  = errors.New("capture: invalid sample")
)

// Level is the logic level of the bus line at one sample.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// SampleReader yields one sample at a time and io.EOF at the end.
type SampleReader interface {
	ReadSample() (Level, error)
}

// Format selects how a byte stream encodes samples.
type Format string

const (
	// FormatRaw is one byte per sample; the channel selects the bit.
	FormatRaw Format = "raw"
	// FormatText is a run of '0'/'1' characters. Whitespace is ignored and
	// '#' starts a comment that runs to the end of the line.
	FormatText Format = "text"
)

// MaxChannel is the highest channel bit a raw capture can carry.
const MaxChannel = 7

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatRaw:
		return FormatRaw, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// NewReader wraps r for the given format. channel is only used by raw captures.
func NewReader(r io.Reader, format Format, channel int) (SampleReader, error) {
	switch format {
	case FormatRaw, "":
		if channel < 0 || channel > MaxChannel {
			return nil, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
		}
		return &rawReader{r: bufio.NewReader(r), mask: 1 << uint(channel)}, nil
	case FormatText:
		return &textReader{r: bufio.NewReader(r)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type rawReader struct {
	r    *bufio.Reader
	mask byte
}

func (rr *rawReader) ReadSample() (Level, error) {
	b, err := rr.r.ReadByte()
	if err != nil {
		return Low, err
	}
	if b&rr.mask != 0 {
		return High, nil
	}
	return Low, nil
}

type textReader struct {
	r      *bufio.Reader
	offset int64
}

func (tr *textReader) ReadSample() (Level, error) {
	for {
		b, err := tr.r.ReadByte()
		if err != nil {
			return Low, err
		}
		tr.offset++
		switch b {
		case '0':
			return Low, nil
		case '1':
			return High, nil
		case ' ', '\t', '\r', '\n', ',':
			continue
		case '#':
			if _, err := tr.r.ReadString('\n'); err != nil {
				return Low, err
			}
		default:
			return Low, fmt.Errorf("%w: %q at byte %d", ErrInvalidSample, b, tr.offset-1)
		}
	}
}

// Levels is an in-memory capture.
type Levels []Level

// Reader returns a SampleReader over a copy-free view of l.
func (l Levels) Reader() SampleReader {
	return &levelsReader{levels: l}
}

// Raw encodes l as a raw capture on channel 0.
func (l Levels) Raw() []byte {
	out := make([]byte, len(l))
	for i, v := range l {
		out[i] = byte(v)
	}
	return out
}

// Text encodes l as a text capture, 64 samples per line.
func (l Levels) Text() string {
	var sb strings.Builder
	sb.Grow(len(l) + len(l)/64 + 1)
	for i, v := range l {
		if v == High {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		if (i+1)%64 == 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

type levelsReader struct {
	levels Levels
	next   int
}

func (lr *levelsReader) ReadSample() (Level, error) {
	if lr.next >= len(lr.levels) {
		return Low, io.EOF
	}
	v := lr.levels[lr.next]
	lr.next++
	return v, nil
}
