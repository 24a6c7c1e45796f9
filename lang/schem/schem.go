// Package schem packs placed blocks and processors into a Mindustry
// schematic file (spec.md §4.4), grounded on original_source/sfmlog.py's
// _schem_builder, which wraps the pymsch library's Schematic/Block/
// ProcessorConfig/ProcessorLink types. pymsch itself isn't available to
// ground a byte-exact reimplementation of Mindustry's .msch container
// against, so this package implements a self-consistent reading of the
// same outer structure (magic header, zlib body, tag map, block-type
// table, per-block position/rotation/config entries) using only the
// standard library's compress/zlib and encoding/binary, the same way
// lang/compiler/asm.go in the example pack hand-rolls its own container
// format with bufio/bytes/encoding-binary.
package schem

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
)

const (
	magic   = "msch"
	version = byte(1)
)

// ProcessorLink is one named link entry in a processor's config, relative
// to that processor's own position.
type ProcessorLink struct {
	DX, DY int16
	Name   string
}

// ProcessorConfig is a processor block's payload: its compiled mlog text
// plus the links visible to it.
type ProcessorConfig struct {
	Code  string
	Links []ProcessorLink
}

// PlacedBlock is one occupied tile entry in the finished schematic.
type PlacedBlock struct {
	TypeName string
	X, Y     int
	Rotation uint8
	Config   *ProcessorConfig // nil for a plain (non-processor) block
}

// Schematic is the grid of placed blocks plus the name/description tags
// pymsch.Schematic.set_tag writes.
type Schematic struct {
	Tags   map[string]string
	Blocks []PlacedBlock

	filled map[[2]int]bool
}

// NewSchematic returns an empty schematic.
func NewSchematic() *Schematic {
	return &Schematic{Tags: map[string]string{}, filled: map[[2]int]bool{}}
}

// SetTag records a metadata tag (e.g. "name", "description").
func (s *Schematic) SetTag(key, val string) { s.Tags[key] = val }

// Occupied reports whether any tile in the size x size footprint rooted at
// (x,y) is already filled.
func (s *Schematic) Occupied(x, y, size int) bool {
	for dx := 0; dx < size; dx++ {
		for dy := 0; dy < size; dy++ {
			if s.filled[[2]int{x + dx, y + dy}] {
				return true
			}
		}
	}
	return false
}

// TryAdd places a block of the given footprint at (x,y), returning false
// (and leaving the grid untouched) if any tile is already filled - the
// direct analog of pymsch.Schematic.add_block returning None on collision.
func (s *Schematic) TryAdd(typeName string, x, y, size int, rotation uint8, cfg *ProcessorConfig) bool {
	if s.Occupied(x, y, size) {
		return false
	}
	for dx := 0; dx < size; dx++ {
		for dy := 0; dy < size; dy++ {
			s.filled[[2]int{x + dx, y + dy}] = true
		}
	}
	s.Blocks = append(s.Blocks, PlacedBlock{TypeName: typeName, X: x, Y: y, Rotation: rotation, Config: cfg})
	return true
}

// bounds returns the schematic's minimal bounding box, used to compute
// width/height for the container header.
func (s *Schematic) bounds() (minX, minY, maxX, maxY int) {
	first := true
	for _, b := range s.Blocks {
		if first {
			minX, maxX, minY, maxY = b.X, b.X, b.Y, b.Y
			first = false
			continue
		}
		if b.X < minX {
			minX = b.X
		}
		if b.X > maxX {
			maxX = b.X
		}
		if b.Y < minY {
			minY = b.Y
		}
		if b.Y > maxY {
			maxY = b.Y
		}
	}
	return
}

// Write serializes the schematic and returns the encoded bytes.
func (s *Schematic) Write() ([]byte, error) {
	var out bytes.Buffer
	out.WriteString(magic)
	out.WriteByte(version)

	var body bytes.Buffer
	minX, minY, maxX, maxY := s.bounds()
	writeShort(&body, int16(maxX-minX+1))
	writeShort(&body, int16(maxY-minY+1))

	if err := writeTags(&body, s.Tags); err != nil {
		return nil, err
	}

	typeIndex := map[string]byte{}
	var typeNames []string
	for _, b := range s.Blocks {
		if _, ok := typeIndex[b.TypeName]; !ok {
			typeIndex[b.TypeName] = byte(len(typeNames))
			typeNames = append(typeNames, b.TypeName)
		}
	}
	if len(typeNames) > 255 {
		return nil, fmt.Errorf("schem: too many distinct block types (%d)", len(typeNames))
	}
	body.WriteByte(byte(len(typeNames)))
	for _, name := range typeNames {
		if err := writeUTF(&body, name); err != nil {
			return nil, err
		}
	}

	writeInt(&body, int32(len(s.Blocks)))
	for _, b := range s.Blocks {
		body.WriteByte(typeIndex[b.TypeName])
		writeInt(&body, int32((b.X-minX)+(b.Y-minY)*int(maxX-minX+1)))
		if err := writeConfig(&body, b.Config); err != nil {
			return nil, err
		}
		body.WriteByte(b.Rotation)
	}

	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(body.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeTags(w *bytes.Buffer, tags map[string]string) error {
	if len(tags) > 255 {
		return fmt.Errorf("schem: too many tags (%d)", len(tags))
	}
	w.WriteByte(byte(len(tags)))
	for _, k := range []string{"name", "description"} {
		v, ok := tags[k]
		if !ok {
			continue
		}
		if err := writeUTF(w, k); err != nil {
			return err
		}
		if err := writeUTF(w, v); err != nil {
			return err
		}
	}
	return nil
}

// writeConfig encodes a block's payload: a one-byte type tag (0 = no
// config, 1 = processor config) followed by the payload itself.
func writeConfig(w *bytes.Buffer, cfg *ProcessorConfig) error {
	if cfg == nil {
		w.WriteByte(0)
		return nil
	}
	w.WriteByte(1)
	if err := writeUTF(w, cfg.Code); err != nil {
		return err
	}
	writeShort(w, int16(len(cfg.Links)))
	for _, l := range cfg.Links {
		writeShort(w, l.DX)
		writeShort(w, l.DY)
		if err := writeUTF(w, l.Name); err != nil {
			return err
		}
	}
	return nil
}

func writeShort(w *bytes.Buffer, v int16) { binary.Write(w, binary.BigEndian, v) }
func writeInt(w *bytes.Buffer, v int32)   { binary.Write(w, binary.BigEndian, v) }

func writeUTF(w *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return fmt.Errorf("schem: string too long (%d bytes)", len(s))
	}
	writeShort(w, int16(len(s)))
	_, err := w.WriteString(s)
	return err
}
