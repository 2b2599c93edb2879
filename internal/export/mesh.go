package export

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/legacy/umesh"
	"udk-migrate/internal/mathutil"
	"udk-migrate/internal/progress"
)

// MeshStrategy exports LOD 0 of a static mesh as ASCII FBX or Wavefront OBJ.
type MeshStrategy struct {
	Default string // "fbx" (default) or "obj"
}

func (s *MeshStrategy) Formats() []string {
	if s.Default == "obj" {
		return []string{"obj", "fbx"}
	}
	return []string{"fbx", "obj"}
}

func (s *MeshStrategy) Export(w io.Writer, a *asset.Loaded, format string, sink progress.Sink) error {
	m, ok := a.Payload.(*umesh.Mesh)
	if !ok || m == nil {
		return fmt.Errorf("payload is %T, want *umesh.Mesh", a.Payload)
	}
	if len(m.LODs) == 0 || len(m.LODs[0].Tris) == 0 {
		return fmt.Errorf("mesh %s has no triangles", a.Ref)
	}
	if len(m.LODs) > 1 {
		sink.LogWarning(fmt.Sprintf("%s: %d LODs, exporting LOD 0 only", a.Ref, len(m.LODs)))
	}

	g := convertLOD(meshName(a, m), m.LODs[0])
	if format == "obj" {
		return writeOBJ(w, g)
	}
	return writeFBX(w, g)
}

func meshName(a *asset.Loaded, m *umesh.Mesh) string {
	if m.Name != "" {
		return m.Name
	}
	return a.Ref.Name()
}

// geometry is LOD data in the target Y-up right-handed frame.
type geometry struct {
	Name      string
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	UVs       [][2]float64
	Tris      [][3]uint32
	Groups    []faceGroup
	Materials []string
	TriMat    []int // material index per triangle
}

type faceGroup struct {
	Material string
	Tris     [][3]uint32
}

func convertLOD(name string, lod umesh.LOD) *geometry {
	g := &geometry{
		Name:      name,
		Positions: make([]mathutil.Vec3, len(lod.Verts)),
		Normals:   make([]mathutil.Vec3, len(lod.Verts)),
		UVs:       make([][2]float64, len(lod.Verts)),
		Tris:      make([][3]uint32, len(lod.Tris)),
		TriMat:    make([]int, len(lod.Tris)),
	}
	conv := mathutil.UDKToYUp
	for i, v := range lod.Verts {
		g.Positions[i] = conv.MulVec3(mathutil.V32(v.Position))
		g.Normals[i] = conv.MulVec3(mathutil.V32(v.Normal)).Normalize()
		g.UVs[i] = [2]float64{float64(v.UV[0]), 1 - float64(v.UV[1])}
	}
	flip := conv.Det() < 0
	for i, t := range lod.Tris {
		if flip {
			t[1], t[2] = t[2], t[1]
		}
		g.Tris[i] = t
	}

	// material slots, unassigned triangles fall into a default slot
	slot := map[string]int{}
	matOf := func(name string) int {
		if name == "" {
			name = "DefaultMaterial"
		}
		if i, ok := slot[name]; ok {
			return i
		}
		slot[name] = len(g.Materials)
		g.Materials = append(g.Materials, name)
		return slot[name]
	}
	for i := range g.TriMat {
		g.TriMat[i] = -1
	}
	for _, s := range lod.Sections {
		mi := matOf(shortName(s.Material))
		for t := s.FirstTri; t < s.FirstTri+s.NumTris; t++ {
			g.TriMat[t] = mi
		}
	}
	for i, mi := range g.TriMat {
		if mi < 0 {
			g.TriMat[i] = matOf("")
		}
	}
	byMat := make([][][3]uint32, len(g.Materials))
	for i, t := range g.Tris {
		byMat[g.TriMat[i]] = append(byMat[g.TriMat[i]], t)
	}
	for i, name := range g.Materials {
		g.Groups = append(g.Groups, faceGroup{Material: name, Tris: byMat[i]})
	}
	return g
}

// shortName strips package qualification: "Pkg.Mats.M_Stone" → "M_Stone".
func shortName(ref string) string {
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

var objTemplate = template.Must(template.New("obj").Funcs(template.FuncMap{
	"f":   func(v float64) string { return fmt.Sprintf("%.6f", v) },
	"idx": func(i uint32) uint32 { return i + 1 },
}).Parse(`# udk-migrate OBJ export
o {{ .Name }}
{{range .Positions}}v {{ f (index . 0) }} {{ f (index . 1) }} {{ f (index . 2) }}
{{end}}{{range .UVs}}vt {{ f (index . 0) }} {{ f (index . 1) }}
{{end}}{{range .Normals}}vn {{ f (index . 0) }} {{ f (index . 1) }} {{ f (index . 2) }}
{{end}}{{range .Groups}}{{if .Tris}}usemtl {{ .Material }}
{{range .Tris}}f {{ idx (index . 0) }}/{{ idx (index . 0) }}/{{ idx (index . 0) }} {{ idx (index . 1) }}/{{ idx (index . 1) }}/{{ idx (index . 1) }} {{ idx (index . 2) }}/{{ idx (index . 2) }}/{{ idx (index . 2) }}
{{end}}{{end}}{{end}}`))

func writeOBJ(w io.Writer, g *geometry) error {
	return objTemplate.Execute(w, g)
}
