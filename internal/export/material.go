package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/legacy/t3d"
	"udk-migrate/internal/progress"
)

// MaterialStrategy writes a Wavefront MTL approximation of a legacy material.
// Texture maps point at sibling files named after the texture object.
type MaterialStrategy struct {
	TextureFormat string
}

func (s *MaterialStrategy) Formats() []string { return []string{"mtl"} }

// material property → MTL map statement
var mtlMaps = []struct {
	prop, stmt string
}{
	{"DiffuseTexture", "map_Kd"},
	{"NormalTexture", "map_Bump"},
	{"SpecularTexture", "map_Ks"},
	{"EmissiveTexture", "map_Ke"},
	{"OpacityTexture", "map_d"},
}

func (s *MaterialStrategy) Export(w io.Writer, a *asset.Loaded, _ string, sink progress.Sink) error {
	b, ok := a.Payload.(*t3d.Block)
	if !ok || b == nil {
		return fmt.Errorf("payload is %T, want *t3d.Block", a.Payload)
	}
	ext := s.TextureFormat
	if ext == "" {
		ext = "webp"
	}

	name := b.Name()
	if name == "" {
		name = a.Ref.Name()
	}
	fmt.Fprintf(w, "# udk-migrate material export: %s (%s)\n", a.Ref, b.Class())
	fmt.Fprintf(w, "newmtl %s\n", name)

	kd := [4]float64{0.8, 0.8, 0.8, 1}
	if v := b.Get("DiffuseColor"); v != "" {
		c, err := t3d.ParseColor(v)
		if err != nil {
			return fmt.Errorf("DiffuseColor: %w", err)
		}
		kd = c
	}
	fmt.Fprintf(w, "Kd %.6f %.6f %.6f\n", kd[0], kd[1], kd[2])
	fmt.Fprintf(w, "Ka 0.000000 0.000000 0.000000\n")

	ns := 32.0
	if v := b.Get("SpecularPower"); v != "" {
		f, err := t3d.ParseFloat(v, ns)
		if err != nil {
			return fmt.Errorf("SpecularPower: %w", err)
		}
		ns = f
	}
	fmt.Fprintf(w, "Ns %.6f\n", ns)

	d := 1.0
	if v := b.Get("Opacity"); v != "" {
		f, err := t3d.ParseFloat(v, d)
		if err != nil {
			return fmt.Errorf("Opacity: %w", err)
		}
		d = f
	}
	fmt.Fprintf(w, "d %.6f\n", d)
	if strings.EqualFold(b.Get("bTwoSided"), "True") {
		fmt.Fprintf(w, "# two sided\n")
	}

	used := map[string]bool{}
	for _, m := range mtlMaps {
		v := b.Get(m.prop)
		_, path, ok := t3d.ParseObjectRef(v)
		if !ok {
			continue
		}
		used[strings.ToLower(m.prop)] = true
		fmt.Fprintf(w, "%s %s.%s\n", m.stmt, shortName(path), ext)
	}

	// other texture references (expression samplers and the like) are kept as comments
	var extra []string
	for _, p := range b.Props {
		if used[strings.ToLower(p.Key)] {
			continue
		}
		if class, path, ok := t3d.ParseObjectRef(p.Value); ok && strings.HasPrefix(strings.ToLower(class), "texture") {
			extra = append(extra, fmt.Sprintf("%s=%s", p.Key, path))
		}
	}
	sort.Strings(extra)
	for _, e := range extra {
		fmt.Fprintf(w, "# unmapped texture %s\n", e)
	}
	if len(extra) > 0 {
		sink.LogWarning(fmt.Sprintf("%s: %d texture reference(s) have no MTL equivalent", a.Ref, len(extra)))
	}
	return nil
}
