package schem

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dolthub/swiss"
)

// Block is a "block" instruction's placement request (spec.md §4.4):
// either a fixed position or, if Positioned is false, left to the
// automatic left-to-right placement pass.
type Block struct {
	Type       string
	Positioned bool
	X, Y       int
	Rotation   int

	linkName            string
	resolvedX, resolvedY int
	placed              bool
}

// Proc is a "proc" instruction's placement request.
type Proc struct {
	Code       string
	Positioned bool
	X, Y       int
	Type       string // only read when Positioned; otherwise Builder.ProcessorTypeDefault applies

	linkName              string
	resolvedX, resolvedY int
	placed                bool
}

// Builder accumulates blocks and processors declared while evaluating a
// source file and packs them into a single Schematic once evaluation
// finishes, grounded on original_source/sfmlog.py's _schem_builder.
type Builder struct {
	ProcessorTypeDefault string
	Name                 string
	Description          string

	blocks     []*Block
	procs      []*Proc
	// linkCounts tracks the running per-stem counter behind each generated
	// link name (sorter1, sorter2, ...). It's pure Get/Put traffic, no
	// iteration, so it uses swiss.Map directly, unlike lang/eval's
	// Vars/Macros/Functions
	// tables which need a full copy for `discard`.
	linkCounts *swiss.Map[string, int]
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{linkCounts: swiss.NewMap[string, int](8)}
}

// AddBlock validates and registers a block declaration, returning its
// link name (spec.md §4.4: "block returns a first-class link value
// immediately, independent of final placement").
func (b *Builder) AddBlock(blk *Block) (string, error) {
	if _, ok := Lookup(blk.Type); !ok {
		return "", fmt.Errorf("unknown block type %q", blk.Type)
	}
	blk.linkName = b.linkName(blk.Type)
	b.blocks = append(b.blocks, blk)
	return blk.linkName, nil
}

// AddProc validates and registers a processor declaration, returning its
// link name immediately in call order (see Build's doc comment for why
// this numbering, not placement order, is authoritative).
func (b *Builder) AddProc(p *Proc) (string, error) {
	typeName := p.Type
	if !p.Positioned {
		typeName = b.ProcessorTypeDefault
	}
	if _, ok := LookupProcessor(typeName); !ok {
		return "", fmt.Errorf("unknown processor type %q", typeName)
	}
	p.linkName = fmt.Sprintf("processor%d", len(b.procs)+1)
	b.procs = append(b.procs, p)
	return p.linkName, nil
}

// linkName derives a link stem from a block type's last hyphen-separated
// word (or the second-to-last if the last is "large"), then appends a
// per-stem running count, exactly as get_link_name does.
func (b *Builder) linkName(typeName string) string {
	words := strings.Split(typeName, "-")
	name := words[len(words)-1]
	if name == "large" && len(words) >= 2 {
		name = words[len(words)-2]
	}
	prev, _ := b.linkCounts.Get(name)
	n := prev + 1
	b.linkCounts.Put(name, n)
	return name + strconv.Itoa(n)
}

// Build packs every registered block and processor into a Schematic.
//
// Processor link names are assigned at AddProc time, in call order, not
// at placement time. original_source/sfmlog.py's equivalent instead names
// the links embedded in each processor's config from proc_positions'
// placement order (positioned procs first, then unpositioned), which can
// diverge from the name handed back to the caller at add_proc time
// whenever a later-declared proc is placed before an earlier one. That
// divergence would leave a schematic where a block variable's link name
// doesn't match the link Mindustry actually wires up - a real defect
// rather than an intentional behavior, so this implementation uses the
// call-order name everywhere instead.
func (b *Builder) Build() (*Schematic, error) {
	s := NewSchematic()
	s.SetTag("name", b.Name)
	s.SetTag("description", b.Description)

	if err := b.placeBlocks(s); err != nil {
		return nil, err
	}
	if err := b.placeProcs(s); err != nil {
		return nil, err
	}
	b.linkProcs(s)
	return s, nil
}

func (b *Builder) placeBlocks(s *Schematic) error {
	blockX := 0
	for _, blk := range b.blocks {
		size, _ := Lookup(blk.Type)
		if blk.Positioned {
			if s.TryAdd(blk.Type, blk.X, blk.Y, size, uint8(blk.Rotation), nil) {
				blk.resolvedX, blk.resolvedY, blk.placed = blk.X, blk.Y, true
			}
			// Collision on an explicitly positioned block is a warning in
			// the original (the block is simply dropped), not reproduced
			// here as a hard error - callers that want to observe it
			// should inspect which blocks ended up unplaced.
			continue
		}
		y := -(size/2) - 1
		for {
			if s.TryAdd(blk.Type, blockX, y, size, 0, nil) {
				blk.resolvedX, blk.resolvedY, blk.placed = blockX, y, true
				break
			}
			blockX++
		}
	}
	return nil
}

func (b *Builder) placeProcs(s *Schematic) error {
	var positioned, unpositioned []*Proc
	for _, p := range b.procs {
		if p.Positioned {
			positioned = append(positioned, p)
		} else {
			unpositioned = append(unpositioned, p)
		}
	}

	for _, p := range positioned {
		size, _ := LookupProcessor(p.Type)
		cfg := &ProcessorConfig{Code: p.Code}
		if s.TryAdd(p.Type, p.X, p.Y, size, 0, cfg) {
			p.resolvedX, p.resolvedY, p.placed = p.X, p.Y, true
		}
		// As with blocks, a collision here drops the proc rather than
		// erroring; it simply never appears in the finished schematic.
	}

	if len(unpositioned) == 0 {
		return nil
	}
	procType := b.ProcessorTypeDefault
	size, ok := LookupProcessor(procType)
	if !ok {
		return fmt.Errorf("unknown default processor type %q", procType)
	}
	squareSize := int(math.Ceil(math.Sqrt(float64(len(unpositioned))))) * size
	for s.countFilledSupercells(size, squareSize)+len(unpositioned) > squareSize*squareSize {
		squareSize++
	}
	procX := int(math.Ceil(float64(size)/2)) - 1
	procY := int(math.Ceil(float64(size)/2)) - 1
	for _, p := range unpositioned {
		cfg := &ProcessorConfig{Code: p.Code}
		for {
			if procX >= squareSize {
				procX = int(math.Ceil(float64(size)/2)) - 1
				procY += size
			}
			if s.TryAdd(procType, procX, procY, size, 0, cfg) {
				p.resolvedX, p.resolvedY, p.placed = procX, procY, true
				procX += size
				break
			}
			procX += size
		}
	}
	return nil
}

func (b *Builder) linkProcs(s *Schematic) {
	for _, p := range b.procs {
		if !p.placed {
			continue
		}
		var links []ProcessorLink
		for _, blk := range b.blocks {
			if !blk.placed {
				continue
			}
			links = append(links, ProcessorLink{
				DX: int16(blk.resolvedX - p.resolvedX), DY: int16(blk.resolvedY - p.resolvedY), Name: blk.linkName,
			})
		}
		for _, other := range b.procs {
			if !other.placed || other == p {
				continue
			}
			links = append(links, ProcessorLink{
				DX: int16(other.resolvedX - p.resolvedX), DY: int16(other.resolvedY - p.resolvedY), Name: other.linkName,
			})
		}
		for i := range s.Blocks {
			if s.Blocks[i].Config != nil && s.Blocks[i].X == p.resolvedX && s.Blocks[i].Y == p.resolvedY {
				s.Blocks[i].Config.Links = links
			}
		}
	}
}

// countFilledSupercells counts how many size x size cells of a
// squareSize x squareSize grid already contain at least one filled tile,
// matching schem_count_filled_blocks's bounding check for how many
// unpositioned processors still fit in the growing packing square.
func (s *Schematic) countFilledSupercells(size, squareSize int) int {
	count := 0
	cells := squareSize / size
	for cx := 0; cx < cells; cx++ {
		for cy := 0; cy < cells; cy++ {
			filled := false
			for px := 0; px < size && !filled; px++ {
				for py := 0; py < size; py++ {
					if s.filled[[2]int{cx*size + px, cy*size + py}] {
						filled = true
						break
					}
				}
			}
			if filled {
				count++
			}
		}
	}
	return count
}
