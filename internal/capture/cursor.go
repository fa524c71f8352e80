package capture

import (
	"errors"
	"fmt"
	"io"
)

// ErrEndOfStream reports that the capture ended before the requested edge.
var ErrEndOfStream = errors.New("capture: end of stream")

// Direction is the kind of level change.
type Direction uint8

const (
	Rising Direction = iota
	Falling
)

func (d Direction) String() string {
	if d == Rising {
		return "rising"
	}
	return "falling"
}

// Edge is a level change. Index is the first sample at the new level.
type Edge struct {
	Direction Direction
	Index     uint64
}

// Cursor walks a sample stream edge by edge. The first sample only primes
// the previous level and can never be an edge.
type Cursor struct {
	src    SampleReader
	next   uint64
	level  Level
	primed bool
}

func NewCursor(src SampleReader) *Cursor {
	return &Cursor{src: src}
}

// Index is the index of the most recently read sample.
func (c *Cursor) Index() uint64 {
	if c.next == 0 {
		return 0
	}
	return c.next - 1
}

// Level is the level of the most recently read sample.
func (c *Cursor) Level() Level {
	return c.level
}

// Samples is the number of samples consumed so far.
func (c *Cursor) Samples() uint64 {
	return c.next
}

// Next advances to the next edge of direction dir. At the end of the
// capture it returns ErrEndOfStream; other read failures are wrapped.
func (c *Cursor) Next(dir Direction) (Edge, error) {
	for {
		lvl, err := c.src.ReadSample()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Edge{}, ErrEndOfStream
			}
			return Edge{}, fmt.Errorf("capture: read sample %d: %w", c.next, err)
		}
		idx := c.next
		c.next++
		prev, primed := c.level, c.primed
		c.level, c.primed = lvl, true
		if !primed || prev == lvl {
			continue
		}
		if (dir == Rising && lvl == High) || (dir == Falling && lvl == Low) {
			return Edge{Direction: dir, Index: idx}, nil
		}
	}
}
