package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FBX 7.3 ASCII object ids
const (
	fbxGeometryID = 1000
	fbxModelID    = 2000
	fbxMaterialID = 3000
)

type fbxWriter struct {
	w      *bufio.Writer
	indent int
}

func (f *fbxWriter) line(format string, args ...any) {
	f.w.WriteString(strings.Repeat("\t", f.indent))
	fmt.Fprintf(f.w, format, args...)
	f.w.WriteByte('\n')
}

func (f *fbxWriter) open(format string, args ...any) {
	f.line(format+" {", args...)
	f.indent++
}

func (f *fbxWriter) close() {
	f.indent--
	f.line("}")
}

func (f *fbxWriter) floats(name string, vals []float64) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	f.open("%s: *%d", name, len(vals))
	f.line("a: %s", strings.Join(parts, ","))
	f.close()
}

func (f *fbxWriter) ints(name string, vals []int) {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	f.open("%s: *%d", name, len(vals))
	f.line("a: %s", strings.Join(parts, ","))
	f.close()
}

func writeFBX(w io.Writer, g *geometry) error {
	bw := bufio.NewWriter(w)
	f := &fbxWriter{w: bw}

	f.line("; FBX 7.3.0 project file")
	f.line("; udk-migrate static mesh export")
	f.open("FBXHeaderExtension: ")
	f.line("FBXHeaderVersion: 1003")
	f.line("FBXVersion: 7300")
	f.line(`Creator: "udk-migrate"`)
	f.close()

	f.open("GlobalSettings: ")
	f.line("Version: 1000")
	f.open("Properties70: ")
	f.line(`P: "UpAxis", "int", "Integer", "",1`)
	f.line(`P: "UpAxisSign", "int", "Integer", "",1`)
	f.line(`P: "FrontAxis", "int", "Integer", "",2`)
	f.line(`P: "FrontAxisSign", "int", "Integer", "",1`)
	f.line(`P: "CoordAxis", "int", "Integer", "",0`)
	f.line(`P: "CoordAxisSign", "int", "Integer", "",1`)
	f.line(`P: "UnitScaleFactor", "double", "Number", "",1`)
	f.close()
	f.close()

	f.open("Definitions: ")
	f.line("Version: 100")
	f.line("Count: %d", 2+len(g.Materials))
	f.open(`ObjectType: "Model"`)
	f.line("Count: 1")
	f.close()
	f.open(`ObjectType: "Geometry"`)
	f.line("Count: 1")
	f.close()
	f.open(`ObjectType: "Material"`)
	f.line("Count: %d", len(g.Materials))
	f.close()
	f.close()

	f.open("Objects: ")
	f.open(`Geometry: %d, "Geometry::%s", "Mesh"`, fbxGeometryID, g.Name)

	verts := make([]float64, 0, len(g.Positions)*3)
	for _, p := range g.Positions {
		verts = append(verts, p[0], p[1], p[2])
	}
	f.floats("Vertices", verts)

	// the last index of each polygon is stored as -(i+1)
	poly := make([]int, 0, len(g.Tris)*3)
	for _, t := range g.Tris {
		poly = append(poly, int(t[0]), int(t[1]), -int(t[2])-1)
	}
	f.ints("PolygonVertexIndex", poly)
	f.line("GeometryVersion: 124")

	normals := make([]float64, 0, len(g.Normals)*3)
	for _, n := range g.Normals {
		normals = append(normals, n[0], n[1], n[2])
	}
	f.open("LayerElementNormal: 0")
	f.line("Version: 101")
	f.line(`Name: ""`)
	f.line(`MappingInformationType: "ByVertice"`)
	f.line(`ReferenceInformationType: "Direct"`)
	f.floats("Normals", normals)
	f.close()

	uvs := make([]float64, 0, len(g.UVs)*2)
	for _, uv := range g.UVs {
		uvs = append(uvs, uv[0], uv[1])
	}
	f.open("LayerElementUV: 0")
	f.line("Version: 101")
	f.line(`Name: "UVChannel_1"`)
	f.line(`MappingInformationType: "ByVertice"`)
	f.line(`ReferenceInformationType: "Direct"`)
	f.floats("UV", uvs)
	f.close()

	f.open("LayerElementMaterial: 0")
	f.line("Version: 101")
	f.line(`Name: ""`)
	f.line(`MappingInformationType: "ByPolygon"`)
	f.line(`ReferenceInformationType: "IndexToDirect"`)
	f.ints("Materials", g.TriMat)
	f.close()

	f.open("Layer: 0")
	f.line("Version: 100")
	for _, t := range []string{"LayerElementNormal", "LayerElementUV", "LayerElementMaterial"} {
		f.open("LayerElement: ")
		f.line(`Type: "%s"`, t)
		f.line("TypedIndex: 0")
		f.close()
	}
	f.close()
	f.close() // Geometry

	f.open(`Model: %d, "Model::%s", "Mesh"`, fbxModelID, g.Name)
	f.line("Version: 232")
	f.line(`Culling: "CullingOff"`)
	f.close()

	for i, m := range g.Materials {
		f.open(`Material: %d, "Material::%s", ""`, fbxMaterialID+i, m)
		f.line("Version: 102")
		f.line(`ShadingModel: "phong"`)
		f.close()
	}
	f.close() // Objects

	f.open("Connections: ")
	f.line(`C: "OO",%d,0`, fbxModelID)
	f.line(`C: "OO",%d,%d`, fbxGeometryID, fbxModelID)
	for i := range g.Materials {
		f.line(`C: "OO",%d,%d`, fbxMaterialID+i, fbxModelID)
	}
	f.close()

	return bw.Flush()
}
