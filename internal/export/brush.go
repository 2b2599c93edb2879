package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/legacy/t3d"
	"udk-migrate/internal/mathutil"
	"udk-migrate/internal/progress"
)

// BrushStrategy writes the polygons of a BSP brush as an OBJ mesh.
// Polygons stay in brush-local space; the actor location is kept as a comment.
type BrushStrategy struct{}

func (s *BrushStrategy) Formats() []string { return []string{"obj"} }

func (s *BrushStrategy) Export(w io.Writer, a *asset.Loaded, _ string, sink progress.Sink) error {
	b, ok := a.Payload.(*t3d.Block)
	if !ok || b == nil {
		return fmt.Errorf("payload is %T, want *t3d.Block", a.Payload)
	}

	var polys [][]mathutil.Vec3
	var skipped int
	b.Walk(func(x *t3d.Block) bool {
		if !strings.EqualFold(x.Type, "Polygon") {
			return true
		}
		var verts []mathutil.Vec3
		for _, v := range x.All("Vertex") {
			p, err := t3d.ParseTriple(v)
			if err != nil {
				skipped++
				return false
			}
			verts = append(verts, mathutil.UDKToYUp.MulVec3(p))
		}
		if len(verts) < 3 {
			skipped++
			return false
		}
		polys = append(polys, verts)
		return false
	})
	if skipped > 0 {
		sink.LogWarning(fmt.Sprintf("%s: skipped %d degenerate polygon(s)", a.Ref, skipped))
	}
	if len(polys) == 0 {
		return fmt.Errorf("brush %s has no polygons", a.Ref)
	}

	name := b.Name()
	if name == "" {
		name = a.Ref.Name()
	}
	fmt.Fprintf(w, "# udk-migrate brush export: %s\n", a.Ref)
	if op := b.Get("CsgOper"); op != "" {
		fmt.Fprintf(w, "# csg %s\n", op)
	}
	if loc := b.Get("Location"); loc != "" {
		fmt.Fprintf(w, "# location %s\n", loc)
	}
	fmt.Fprintf(w, "o %s\n", name)
	// mirrored frame: reverse winding before anything is written
	for _, p := range polys {
		slices.Reverse(p)
	}
	for _, p := range polys {
		for _, v := range p {
			fmt.Fprintf(w, "v %.6f %.6f %.6f\n", v[0], v[1], v[2])
		}
	}
	for _, p := range polys {
		n := mathutil.FaceNormal(p)
		fmt.Fprintf(w, "vn %.6f %.6f %.6f\n", n[0], n[1], n[2])
	}

	next := 1
	for fi, p := range polys {
		idx := make([]string, len(p))
		for i := range p {
			idx[i] = fmt.Sprintf("%d//%d", next+i, fi+1)
		}
		fmt.Fprintf(w, "f %s\n", strings.Join(idx, " "))
		next += len(p)
	}
	return nil
}
