package eval

import (
	"strings"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// instFile implements the "file OP ..." family (spec.md §4.3). Relative
// paths resolve against the root cwd (ev.GlobalCwd), not the cwd of the
// import currently executing.
func (ev *Evaluator) instFile(inst *InstructionLine) error {
	opTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	pos := inst.Pos()

	switch opTok.Str {
	case "open":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		path, err := inst.Str(2)
		if err != nil {
			return err
		}
		resolved, err := ev.Importer.Resolve(ev.GlobalCwd, path)
		if err != nil {
			return ev.errorf(pos, "file open: %v", err)
		}
		h := &value.FileHandle{Name: resolved}
		v := &value.Value{Kind: value.TextFile, Pos: pos, File: h}
		ev.writeVar(target, v)

	case "openbin":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		path, err := inst.Str(2)
		if err != nil {
			return err
		}
		resolved, err := ev.Importer.Resolve(ev.GlobalCwd, path)
		if err != nil {
			return ev.errorf(pos, "file openbin: %v", err)
		}
		data, err := ev.Importer.ReadFileBytes(resolved)
		if err != nil {
			return ev.errorf(pos, "file openbin: %v", err)
		}
		h := &value.FileHandle{Name: resolved, Binary: data}
		v := &value.Value{Kind: value.BinFile, Pos: pos, File: h}
		ev.writeVar(target, v)

	case "close":
		h, err := ev.fileHandle(inst, 1, pos)
		if err != nil {
			return err
		}
		h.Closed = true

	case "read":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		h, err := ev.fileHandle(inst, 2, pos)
		if err != nil {
			return err
		}
		if h.Closed {
			return ev.errorf(pos, "file read: handle closed")
		}
		if h.Text == nil {
			data, err := ev.Importer.ReadFile(h.Name)
			if err != nil {
				return ev.errorf(pos, "file read: %v", err)
			}
			h.Text = strings.NewReader(data)
		}
		buf := make([]byte, h.Text.Len())
		h.Text.Read(buf)
		ev.writeVar(target, value.NewString(string(buf), pos))

	case "readbytes":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		h, err := ev.fileHandle(inst, 2, pos)
		if err != nil {
			return err
		}
		if h.Closed {
			return ev.errorf(pos, "file readbytes: handle closed")
		}
		n, err := inst.Num(3)
		if err != nil {
			return err
		}
		count := int(n)
		if count < 1 || count > 32 {
			return ev.errorf(pos, "file readbytes: count %d out of range [1,32]", count)
		}
		if count > len(h.Binary) {
			return ev.errorf(pos, "file readbytes: not enough bytes remaining")
		}
		endian := "big"
		if inst.Has(4) {
			if endian, err = inst.Str(4); err != nil {
				return err
			}
		}
		chunk := h.Binary[:count]
		h.Binary = h.Binary[count:]
		var n64 uint64
		if endian == "little" {
			for i := count - 1; i >= 0; i-- {
				n64 = n64<<8 | uint64(chunk[i])
			}
		} else {
			for _, b := range chunk {
				n64 = n64<<8 | uint64(b)
			}
		}
		ev.writeVar(target, value.NewNumber(float64(n64), pos))

	default:
		return ev.errorf(pos, "file: unknown operation %q", opTok.Str)
	}
	return nil
}

func (ev *Evaluator) fileHandle(inst *InstructionLine, idx int, pos token.Position) (*value.FileHandle, error) {
	v, err := inst.Require(idx)
	if err != nil {
		return nil, err
	}
	if v.Kind != value.TextFile && v.Kind != value.BinFile {
		return nil, ev.errorf(pos, "expected a file handle")
	}
	return v.File, nil
}
