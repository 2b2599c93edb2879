package umesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	Magic   = "UMSH"
	Version = 1

	nameLen    = 64
	maxLODs    = 8
	maxEntries = 1 << 24
)

var errTruncated = errors.New("truncated data")

// Parse reads a .umesh file.
func Parse(filepath string) (*Mesh, error) {
	raw, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("umesh: read %s: %w", filepath, err)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("umesh: %s: %w", filepath, err)
	}
	return m, nil
}

// Decode parses an in-memory .umesh blob.
func Decode(raw []byte) (*Mesh, error) {
	if len(raw) < 8 || string(raw[:4]) != Magic {
		return nil, errors.New("invalid header")
	}
	if v := binary.LittleEndian.Uint32(raw[4:8]); v != Version {
		return nil, fmt.Errorf("unsupported version %d", v)
	}

	r := &reader{data: raw, off: 8}
	return r.parse()
}

type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		r.err = errTruncated
		return false
	}
	return true
}

func (r *reader) readStr(n int) string {
	if !r.need(n) {
		return ""
	}
	s := r.data[r.off : r.off+n]
	r.off += n
	if i := bytes.IndexByte(s, 0); i >= 0 {
		return string(s[:i])
	}
	return string(s)
}

func (r *reader) readU16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) readU32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) readF32() float32 {
	return math.Float32frombits(r.readU32())
}

func (r *reader) parse() (*Mesh, error) {
	m := &Mesh{Name: r.readStr(nameLen)}
	lodCount := int(r.readU16())
	if r.err != nil {
		return nil, r.err
	}
	if lodCount == 0 || lodCount > maxLODs {
		return nil, fmt.Errorf("invalid LOD count %d", lodCount)
	}

	m.LODs = make([]LOD, 0, lodCount)
	for l := 0; l < lodCount; l++ {
		rawNV, rawNT := r.readU32(), r.readU32()
		ns := int(r.readU16())
		if r.err != nil {
			return nil, r.err
		}
		if rawNV > maxEntries || rawNT > maxEntries {
			return nil, fmt.Errorf("LOD %d: implausible counts verts=%d tris=%d", l, rawNV, rawNT)
		}
		nv, nt := int(rawNV), int(rawNT)
		// Vertices: 32 bytes each (pos f32x3, normal f32x3, uv f32x2)
		if !r.need(nv * 32) {
			return nil, r.err
		}
		verts := make([]Vertex, nv)
		for i := range verts {
			v := &verts[i]
			for k := 0; k < 3; k++ {
				v.Position[k] = r.readF32()
			}
			for k := 0; k < 3; k++ {
				v.Normal[k] = r.readF32()
			}
			v.UV[0] = r.readF32()
			v.UV[1] = r.readF32()
		}

		// Triangles: 12 bytes each
		if !r.need(nt * 12) {
			return nil, r.err
		}
		tris := make([][3]uint32, nt)
		for i := range tris {
			for k := 0; k < 3; k++ {
				idx := r.readU32()
				if idx >= rawNV {
					return nil, fmt.Errorf("LOD %d: triangle %d index %d out of range", l, i, idx)
				}
				tris[i][k] = idx
			}
		}

		sections := make([]Section, 0, ns)
		for i := 0; i < ns; i++ {
			material := r.readStr(nameLen)
			first, count := r.readU32(), r.readU32()
			if r.err != nil {
				return nil, r.err
			}
			// checked before narrowing to int so 32-bit builds cannot wrap
			if uint64(first)+uint64(count) > uint64(nt) {
				return nil, fmt.Errorf("LOD %d: section %d exceeds triangle count", l, i)
			}
			sections = append(sections, Section{Material: material, FirstTri: int(first), NumTris: int(count)})
		}

		m.LODs = append(m.LODs, LOD{Verts: verts, Tris: tris, Sections: sections})
	}
	return m, r.err
}

// Encode writes m in .umesh layout. Strings longer than the fixed field are truncated.
func Encode(w io.Writer, m *Mesh) error {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	le := binary.LittleEndian
	buf.Write(le.AppendUint32(nil, Version))
	writeStr(&buf, m.Name)
	buf.Write(le.AppendUint16(nil, uint16(len(m.LODs))))
	for _, lod := range m.LODs {
		buf.Write(le.AppendUint32(nil, uint32(len(lod.Verts))))
		buf.Write(le.AppendUint32(nil, uint32(len(lod.Tris))))
		buf.Write(le.AppendUint16(nil, uint16(len(lod.Sections))))
		for _, v := range lod.Verts {
			for _, f := range v.Position {
				buf.Write(le.AppendUint32(nil, math.Float32bits(f)))
			}
			for _, f := range v.Normal {
				buf.Write(le.AppendUint32(nil, math.Float32bits(f)))
			}
			for _, f := range v.UV {
				buf.Write(le.AppendUint32(nil, math.Float32bits(f)))
			}
		}
		for _, t := range lod.Tris {
			for _, i := range t {
				buf.Write(le.AppendUint32(nil, i))
			}
		}
		for _, s := range lod.Sections {
			writeStr(&buf, s.Material)
			buf.Write(le.AppendUint32(nil, uint32(s.FirstTri)))
			buf.Write(le.AppendUint32(nil, uint32(s.NumTris)))
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeStr(buf *bytes.Buffer, s string) {
	var field [nameLen]byte
	copy(field[:nameLen-1], s)
	buf.Write(field[:])
}
