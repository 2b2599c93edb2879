// Package scene records the actors of a legacy level and the meshes they use.
package scene

import (
	"fmt"
	"strings"

	"udk-migrate/internal/legacy/t3d"
	"udk-migrate/internal/mathutil"
	"udk-migrate/internal/progress"
)

// Transform is an actor placement in source units. Rotation is in degrees
// (pitch, yaw, roll).
type Transform struct {
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
}

// IdentityTransform has unit scale.
var IdentityTransform = Transform{Scale: [3]float64{1, 1, 1}}

// Entity is one placed object of a scene.
type Entity struct {
	Name       string
	Kind       string
	Transform  Transform
	MeshRefs   []string
	Properties map[string]string
}

// Scene enumerates entities in a stable order.
type Scene interface {
	Entities() []Entity
}

// Entities is a Scene backed by a slice.
type Entities []Entity

func (e Entities) Entities() []Entity { return e }

// T3DScene is a level loaded from a UDK T3D map export.
type T3DScene struct {
	Path     string
	entities []Entity
}

func (s *T3DScene) Entities() []Entity { return s.entities }

// actor properties consumed into the transform
var transformProps = map[string]bool{
	"location":    true,
	"rotation":    true,
	"drawscale":   true,
	"drawscale3d": true,
}

// LoadT3D reads every actor of a T3D map in file order. An actor whose
// placement cannot be parsed is kept with IdentityTransform and its raw
// placement properties, and a warning goes to sink.
func LoadT3D(path string, sink progress.Sink) (*T3DScene, error) {
	if sink == nil {
		sink = progress.Nop
	}
	doc, err := t3d.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	s := &T3DScene{Path: path}
	for _, a := range doc.Actors() {
		e := entityFromActor(a)
		tr, err := transformOf(a)
		if err != nil {
			sink.LogWarning(fmt.Sprintf("scene: %s line %d: actor %s: %v, using identity transform", path, a.Line, e.Name, err))
			for _, p := range a.Props {
				if transformProps[strings.ToLower(p.Key)] {
					e.Properties[p.Key] = p.Value
				}
			}
		} else {
			e.Transform = tr
		}
		s.entities = append(s.entities, e)
	}
	return s, nil
}

func transformOf(a *t3d.Block) (Transform, error) {
	t := IdentityTransform
	var err error
	if v := a.Get("Location"); v != "" {
		if t.Position, err = t3d.ParseVector(v, 0); err != nil {
			return IdentityTransform, fmt.Errorf("Location: %w", err)
		}
	}
	if v := a.Get("Rotation"); v != "" {
		r, err := t3d.ParseRotator(v)
		if err != nil {
			return IdentityTransform, fmt.Errorf("Rotation: %w", err)
		}
		t.Rotation = mathutil.RotatorToDegrees(r)
	}
	if v := a.Get("DrawScale3D"); v != "" {
		if t.Scale, err = t3d.ParseVector(v, 1); err != nil {
			return IdentityTransform, fmt.Errorf("DrawScale3D: %w", err)
		}
	}
	if v := a.Get("DrawScale"); v != "" {
		f, err := t3d.ParseFloat(v, 1)
		if err != nil {
			return IdentityTransform, fmt.Errorf("DrawScale: %w", err)
		}
		for i := range t.Scale {
			t.Scale[i] *= f
		}
	}
	return t, nil
}

func entityFromActor(a *t3d.Block) Entity {
	e := Entity{
		Name:       a.Name(),
		Kind:       a.Class(),
		Transform:  IdentityTransform,
		Properties: map[string]string{},
	}

	// mesh references live on the actor or on its components
	seen := map[string]bool{}
	a.Walk(func(b *t3d.Block) bool {
		for _, p := range b.Props {
			if !strings.EqualFold(p.Key, "StaticMesh") {
				continue
			}
			if _, path, ok := t3d.ParseObjectRef(p.Value); ok && !seen[strings.ToLower(path)] {
				seen[strings.ToLower(path)] = true
				e.MeshRefs = append(e.MeshRefs, path)
			}
		}
		return true
	})

	for _, p := range a.Props {
		if transformProps[strings.ToLower(p.Key)] {
			continue
		}
		e.Properties[p.Key] = p.Value
	}
	return e
}
