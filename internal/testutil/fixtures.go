// Package testutil builds legacy content trees for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/require"

	"udk-migrate/internal/legacy/umesh"
)

// Cube returns a unit cube with one material section.
func Cube(name string) *umesh.Mesh {
	p := [8][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	verts := make([]umesh.Vertex, len(p))
	for i, pos := range p {
		verts[i] = umesh.Vertex{
			Position: pos,
			Normal:   [3]float32{0, 0, 1},
			UV:       [2]float32{pos[0], pos[1]},
		}
	}
	tris := [][3]uint32{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
	return &umesh.Mesh{
		Name: name,
		LODs: []umesh.LOD{{
			Verts: verts,
			Tris:  tris,
			Sections: []umesh.Section{
				{Material: "Kit.Mats.M_Side", FirstTri: 0, NumTris: 8},
				{Material: "Kit.Mats.M_Top", FirstTri: 8, NumTris: 4},
			},
		}},
	}
}

// RefPath maps "Pkg.Group.Name" to root/Pkg/Group/Name+ext.
func RefPath(root, ref, ext string) string {
	return filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(ref, ".", "/"))+ext)
}

// WriteFile writes content to rel under root, creating parents.
func WriteFile(tb testing.TB, root, rel string, content []byte) string {
	tb.Helper()
	path := filepath.Join(root, rel)
	require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(tb, os.WriteFile(path, content, 0644))
	return path
}

// WriteMesh stores m as the .umesh object for ref.
func WriteMesh(tb testing.TB, root, ref string, m *umesh.Mesh) string {
	tb.Helper()
	var buf bytes.Buffer
	require.NoError(tb, umesh.Encode(&buf, m))
	path := RefPath(root, ref, ".umesh")
	rel, err := filepath.Rel(root, path)
	require.NoError(tb, err)
	return WriteFile(tb, root, rel, buf.Bytes())
}

// WriteObject stores T3D text as the .t3d object for ref.
func WriteObject(tb testing.TB, root, ref, text string) string {
	tb.Helper()
	path := RefPath(root, ref, ".t3d")
	rel, err := filepath.Rel(root, path)
	require.NoError(tb, err)
	return WriteFile(tb, root, rel, []byte(text))
}

// WritePNG writes a w×h gradient as the PNG texture for ref.
func WritePNG(tb testing.TB, root, ref string, w, h int) string {
	tb.Helper()
	return writeImage(tb, root, ref, ".png", gradient(w, h), png.Encode)
}

// WriteTGA writes a w×h gradient as the TGA texture for ref.
func WriteTGA(tb testing.TB, root, ref string, w, h int) string {
	tb.Helper()
	return writeImage(tb, root, ref, ".tga", gradient(w, h), tga.Encode)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / max(1, w-1)), G: uint8(y * 255 / max(1, h-1)), B: 64, A: 255})
		}
	}
	return img
}

func writeImage(tb testing.TB, root, ref, ext string, img image.Image, encode func(io.Writer, image.Image) error) string {
	tb.Helper()
	var buf bytes.Buffer
	require.NoError(tb, encode(&buf, img))
	path := RefPath(root, ref, ext)
	rel, err := filepath.Rel(root, path)
	require.NoError(tb, err)
	return WriteFile(tb, root, rel, buf.Bytes())
}

const MaterialT3D = `Begin Object Class=Material Name=M_Stone
   DiffuseTexture=Texture2D'Kit.Tex.T_Stone_D'
   NormalTexture=Texture2D'Kit.Tex.T_Stone_N'
   DiffuseColor=(R=0.800000,G=0.700000,B=0.600000,A=1.000000)
   Opacity=1.0
   BlendMode=BLEND_Opaque
End Object
`

const LightT3D = `Begin Actor Class=PointLight Name=PointLight_0
   Begin Object Class=PointLightComponent Name=PointLightComponent0
      Brightness=2.000000
      LightColor=(B=128,G=255,R=255,A=0)
      Radius=1024.000000
   End Object
   Location=(X=0.000000,Y=0.000000,Z=256.000000)
End Actor
`

const BrushT3D = `Begin Actor Class=Brush Name=Brush_0
   Begin Brush Name=Model_0
      Begin PolyList
         Begin Polygon
            Origin   +00000.000000,+00000.000000,+00000.000000
            Normal   +00000.000000,+00000.000000,+00001.000000
            Vertex   +00000.000000,+00000.000000,+00000.000000
            Vertex   +00256.000000,+00000.000000,+00000.000000
            Vertex   +00256.000000,+00256.000000,+00000.000000
            Vertex   +00000.000000,+00256.000000,+00000.000000
         End Polygon
      End PolyList
   End Brush
   CsgOper=CSG_Add
   Location=(X=0.000000,Y=0.000000,Z=0.000000)
End Actor
`
