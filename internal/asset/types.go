package asset

import "strings"

// Kind classifies a resolved legacy object.
type Kind int

const (
	Unknown Kind = iota
	StaticMesh
	Material
	Texture
	Light
	Brush
)

var kindNames = [...]string{
	Unknown:    "Unknown",
	StaticMesh: "StaticMesh",
	Material:   "Material",
	Texture:    "Texture",
	Light:      "Light",
	Brush:      "Brush",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// ParseKind maps a kind name (case-insensitive) back to a Kind.
func ParseKind(s string) Kind {
	for i, n := range kindNames {
		if strings.EqualFold(n, s) {
			return Kind(i)
		}
	}
	return Unknown
}

// Metrics is a coarse size/complexity summary used only for diagnostics.
type Metrics struct {
	Vertices  int `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Triangles int `json:"triangles,omitempty" yaml:"triangles,omitempty"`
	LODs      int `json:"lods,omitempty" yaml:"lods,omitempty"`
	Width     int `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int `json:"height,omitempty" yaml:"height,omitempty"`
	Props     int `json:"props,omitempty" yaml:"props,omitempty"`
}

// Loaded is an in-memory handle to a resolved legacy object.
// Payload holds the decoded form (*umesh.Mesh, image.Image, *t3d.Block)
// and is owned by whoever resolved it.
type Loaded struct {
	Ref     Reference
	Kind    Kind
	Class   string
	Source  string
	Size    int64
	Metrics Metrics
	Payload any
}
