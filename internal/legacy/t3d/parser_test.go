package t3d

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMap = `Begin Map
   Begin Level NAME=PersistentLevel
      Begin Actor Class=StaticMeshActor Name=StaticMeshActor_0 Archetype=StaticMeshActor'Engine.Default__StaticMeshActor'
         Begin Object Class=StaticMeshComponent Name=StaticMeshComponent0 ObjName=StaticMeshComponent_12
            StaticMesh=StaticMesh'CastleKit.Walls.SM_Wall'
            Materials(0)=Material'CastleKit.Mats.M_Stone'
         End Object
         Location=(X=128.000000,Y=-64.000000,Z=0.000000)
         Rotation=(Pitch=0,Yaw=16384,Roll=0)
         DrawScale3D=(X=1.000000,Y=2.000000,Z=1.000000)
         Tag="Wall"
      End Actor
      Begin Actor Class=Brush Name=Brush_3
         Begin Brush Name=Model_5
            Begin PolyList
               Begin Polygon Flags=3584
                  Origin   +00000.000000,+00000.000000,+00000.000000
                  Vertex   +00000.000000,+00000.000000,+00000.000000
                  Vertex   +00128.000000,+00000.000000,+00000.000000
                  Vertex   +00128.000000,+00128.000000,+00000.000000
               End Polygon
            End PolyList
         End Brush
      End Actor
   End Level
End Map
`

func TestReadMap(t *testing.T) {
	doc, err := Read(strings.NewReader(sampleMap))
	require.NoError(t, err)

	actors := doc.Actors()
	require.Len(t, actors, 2)

	wall := actors[0]
	assert.Equal(t, "StaticMeshActor", wall.Class())
	assert.Equal(t, "StaticMeshActor_0", wall.Name())
	assert.Equal(t, "StaticMeshActor'Engine.Default__StaticMeshActor'", wall.Attrs["archetype"])
	assert.Equal(t, `"Wall"`, wall.Get("tag"))

	comps := wall.Find("Object")
	require.Len(t, comps, 1)
	assert.Equal(t, "StaticMesh'CastleKit.Walls.SM_Wall'", comps[0].Get("StaticMesh"))
	assert.Equal(t, "Material'CastleKit.Mats.M_Stone'", comps[0].Get("Materials(0)"))

	var polys []*Block
	actors[1].Walk(func(b *Block) bool {
		if b.Type == "Polygon" {
			polys = append(polys, b)
		}
		return true
	})
	require.Len(t, polys, 1)
	assert.Len(t, polys[0].All("Vertex"), 3)
	assert.Equal(t, "3584", polys[0].Attrs["flags"])
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"unterminated": "Begin Map\nBegin Actor Class=Light\n",
		"mismatched":   "Begin Map\nEnd Actor\n",
		"stray end":    "End Map\n",
		"empty begin":  "Begin\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestNameFallsBackToProperty(t *testing.T) {
	doc, err := Read(strings.NewReader("Begin Actor Class=PointLight\nName=\"PointLight_7\"\nEnd Actor\n"))
	require.NoError(t, err)
	assert.Equal(t, "PointLight_7", doc.Root().Name())
}

func TestParseValues(t *testing.T) {
	v, err := ParseVector("(X=1.5,Z=-2)", 0)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1.5, 0, -2}, v)

	s, err := ParseVector("(X=2)", 1)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{2, 1, 1}, s)

	r, err := ParseRotator("(Pitch=-16384,Yaw=32768,Roll=10.0)")
	require.NoError(t, err)
	assert.Equal(t, [3]int{-16384, 32768, 10}, r)

	_, err = ParseVector("X=1", 0)
	assert.Error(t, err)

	class, path, ok := ParseObjectRef("StaticMesh'Pkg.SM_Rock'")
	assert.True(t, ok)
	assert.Equal(t, "StaticMesh", class)
	assert.Equal(t, "Pkg.SM_Rock", path)

	_, _, ok = ParseObjectRef("None")
	assert.False(t, ok)

	tri, err := ParseTriple("+00128.000000,-00064.500000,+00000.000000")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{128, -64.5, 0}, tri)

	_, err = ParseTriple("1,2")
	assert.Error(t, err)

	c, err := ParseColor("(R=255,G=0,B=51,A=255)")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c[0], 1e-9)
	assert.InDelta(t, 0.2, c[2], 1e-9)

	c, err = ParseColor("(R=0.5,G=0.25,B=1.0)")
	require.NoError(t, err)
	assert.Equal(t, [4]float64{0.5, 0.25, 1, 1}, c)

	nested, err := ParseStruct("(Min=(X=0,Y=0),Max=(X=1,Y=1),IsValid=1)")
	require.NoError(t, err)
	assert.Equal(t, "(X=0,Y=0)", nested["min"])
	assert.Equal(t, "1", nested["isvalid"])
}
