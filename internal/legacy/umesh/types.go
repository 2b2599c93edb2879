package umesh

// Vertex holds one render vertex of a LOD.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// Section is a run of triangles drawn with one material slot.
type Section struct {
	Material string // material reference (e.g. "MyPackage.Materials.M_Rock")
	FirstTri int
	NumTris  int
}

// LOD holds one level of detail.
type LOD struct {
	Verts    []Vertex
	Tris     [][3]uint32
	Sections []Section
}

// Mesh holds a parsed legacy static mesh.
type Mesh struct {
	Name string
	LODs []LOD
}

// VertexCount returns the vertex count of LOD 0.
func (m *Mesh) VertexCount() int {
	if len(m.LODs) == 0 {
		return 0
	}
	return len(m.LODs[0].Verts)
}

// TriangleCount returns the triangle count of LOD 0.
func (m *Mesh) TriangleCount() int {
	if len(m.LODs) == 0 {
		return 0
	}
	return len(m.LODs[0].Tris)
}
