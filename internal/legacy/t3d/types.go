package t3d

import "strings"

// Prop is one property line. Key=Value lines and whitespace-separated
// polygon lines ("Vertex  +1.0,+2.0,+3.0") are both stored as props.
type Prop struct {
	Key   string
	Value string
}

// Block is a Begin/End section such as Map, Actor, Object, Brush or Polygon.
type Block struct {
	Type     string            // "Actor", "Object", "Polygon", ...
	Attrs    map[string]string // header attributes, keys lower-cased
	Props    []Prop
	Children []*Block
	Line     int
}

// Class returns the Class= header attribute.
func (b *Block) Class() string { return b.Attrs["class"] }

// Name returns the Name= header attribute, falling back to a Name= property.
func (b *Block) Name() string {
	if n := b.Attrs["name"]; n != "" {
		return n
	}
	return strings.Trim(b.Get("Name"), `"`)
}

// Get returns the last value for key (case-insensitive), or "".
func (b *Block) Get(key string) string {
	v, _ := b.Lookup(key)
	return v
}

// Lookup returns the last value for key (case-insensitive).
func (b *Block) Lookup(key string) (string, bool) {
	for i := len(b.Props) - 1; i >= 0; i-- {
		if strings.EqualFold(b.Props[i].Key, key) {
			return b.Props[i].Value, true
		}
	}
	return "", false
}

// All returns every value for key in file order.
func (b *Block) All(key string) []string {
	var out []string
	for _, p := range b.Props {
		if strings.EqualFold(p.Key, key) {
			out = append(out, p.Value)
		}
	}
	return out
}

// Find returns direct children of the given block type (case-insensitive).
func (b *Block) Find(typ string) []*Block {
	var out []*Block
	for _, c := range b.Children {
		if strings.EqualFold(c.Type, typ) {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits b and all descendants depth-first in file order.
func (b *Block) Walk(fn func(*Block) bool) {
	if !fn(b) {
		return
	}
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// Document is a parsed T3D file. Top-level blocks appear in file order.
type Document struct {
	Blocks []*Block
}

// Actors returns every Actor block in enumeration order, however deeply nested
// under Map/Level blocks.
func (d *Document) Actors() []*Block {
	var out []*Block
	for _, b := range d.Blocks {
		b.Walk(func(x *Block) bool {
			if strings.EqualFold(x.Type, "Actor") {
				out = append(out, x)
				return false
			}
			return true
		})
	}
	return out
}

// Root returns the first top-level block, or nil for an empty document.
func (d *Document) Root() *Block {
	if len(d.Blocks) == 0 {
		return nil
	}
	return d.Blocks[0]
}
