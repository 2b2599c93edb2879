package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/legacy/t3d"
	"udk-migrate/internal/mathutil"
	"udk-migrate/internal/progress"
)

// DefaultLightIntensityMultiplier converts UDK brightness to modern intensity units.
const DefaultLightIntensityMultiplier = 5000.0

// LightStrategy writes a JSON light description with converted intensity.
type LightStrategy struct {
	Multiplier float64
}

func (s *LightStrategy) Formats() []string { return []string{"json"} }

// LightDoc is the exported light description.
type LightDoc struct {
	Name           string     `json:"name"`
	Class          string     `json:"class"`
	Type           string     `json:"type"`
	Brightness     float64    `json:"brightness"`
	Intensity      float64    `json:"intensity"`
	Color          [3]float64 `json:"color"`
	Radius         float64    `json:"radius,omitempty"`
	InnerConeAngle float64    `json:"innerConeAngle,omitempty"`
	OuterConeAngle float64    `json:"outerConeAngle,omitempty"`
	Location       [3]float64 `json:"location"`
	Rotation       [3]float64 `json:"rotation"`
	CastShadows    bool       `json:"castShadows"`
}

func (s *LightStrategy) Export(w io.Writer, a *asset.Loaded, _ string, sink progress.Sink) error {
	b, ok := a.Payload.(*t3d.Block)
	if !ok || b == nil {
		return fmt.Errorf("payload is %T, want *t3d.Block", a.Payload)
	}
	mult := s.Multiplier
	if mult <= 0 {
		mult = DefaultLightIntensityMultiplier
	}

	// component properties override actor properties
	get := func(key string) string {
		for _, c := range b.Find("Object") {
			if strings.Contains(strings.ToLower(c.Class()), "lightcomponent") {
				if v, ok := c.Lookup(key); ok {
					return v
				}
			}
		}
		return b.Get(key)
	}

	doc := LightDoc{
		Name:        b.Name(),
		Class:       b.Class(),
		Type:        lightType(b.Class()),
		Color:       [3]float64{1, 1, 1},
		CastShadows: !strings.EqualFold(get("CastShadows"), "False"),
	}
	if doc.Name == "" {
		doc.Name = a.Ref.Name()
	}

	var err error
	if doc.Brightness, err = t3d.ParseFloat(get("Brightness"), 1); err != nil {
		return fmt.Errorf("Brightness: %w", err)
	}
	doc.Intensity = doc.Brightness * mult

	if v := get("LightColor"); v != "" {
		c, err := t3d.ParseColor(v)
		if err != nil {
			return fmt.Errorf("LightColor: %w", err)
		}
		doc.Color = [3]float64{c[0], c[1], c[2]}
	}
	if doc.Radius, err = t3d.ParseFloat(get("Radius"), 0); err != nil {
		return fmt.Errorf("Radius: %w", err)
	}
	if doc.InnerConeAngle, err = t3d.ParseFloat(get("InnerConeAngle"), 0); err != nil {
		return fmt.Errorf("InnerConeAngle: %w", err)
	}
	if doc.OuterConeAngle, err = t3d.ParseFloat(get("OuterConeAngle"), 0); err != nil {
		return fmt.Errorf("OuterConeAngle: %w", err)
	}
	if v := b.Get("Location"); v != "" {
		if doc.Location, err = t3d.ParseVector(v, 0); err != nil {
			return fmt.Errorf("Location: %w", err)
		}
	}
	if v := b.Get("Rotation"); v != "" {
		r, err := t3d.ParseRotator(v)
		if err != nil {
			return fmt.Errorf("Rotation: %w", err)
		}
		doc.Rotation = mathutil.RotatorToDegrees(r)
	}
	if doc.Type == "unknown" {
		sink.LogWarning(fmt.Sprintf("%s: unrecognised light class %q", a.Ref, doc.Class))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func lightType(class string) string {
	c := strings.ToLower(class)
	switch {
	case strings.Contains(c, "spot"):
		return "spot"
	case strings.Contains(c, "directional") || strings.Contains(c, "dominant"):
		return "directional"
	case strings.Contains(c, "sky"):
		return "sky"
	case strings.Contains(c, "point"):
		return "point"
	}
	return "unknown"
}
