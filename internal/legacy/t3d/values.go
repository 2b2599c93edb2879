package t3d

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseStruct splits "(X=1.0,Y=2.0,Z=3.0)" into a lower-cased key map.
// Nested parentheses are kept intact in the value.
func ParseStruct(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("t3d: not a struct value: %q", s)
	}
	body := s[1 : len(s)-1]
	out := make(map[string]string)
	depth, start := 0, 0
	flush := func(end int) {
		field := strings.TrimSpace(body[start:end])
		if k, v, ok := strings.Cut(field, "="); ok {
			out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
	}
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(body))
	return out, nil
}

// ParseVector reads "(X=..,Y=..,Z=..)". Missing components default to def.
func ParseVector(s string, def float64) ([3]float64, error) {
	v := [3]float64{def, def, def}
	m, err := ParseStruct(s)
	if err != nil {
		return v, err
	}
	for i, k := range [3]string{"x", "y", "z"} {
		if raw, ok := m[k]; ok {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return v, fmt.Errorf("t3d: vector %s: %w", k, err)
			}
			v[i] = f
		}
	}
	return v, nil
}

// ParseRotator reads "(Pitch=..,Yaw=..,Roll=..)" in UDK rotator units.
func ParseRotator(s string) ([3]int, error) {
	var r [3]int
	m, err := ParseStruct(s)
	if err != nil {
		return r, err
	}
	for i, k := range [3]string{"pitch", "yaw", "roll"} {
		if raw, ok := m[k]; ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				f, ferr := strconv.ParseFloat(raw, 64)
				if ferr != nil {
					return r, fmt.Errorf("t3d: rotator %s: %w", k, err)
				}
				n = int(f)
			}
			r[i] = n
		}
	}
	return r, nil
}

// ParseObjectRef splits "StaticMesh'Pkg.Group.Mesh'" into class and path.
// A bare path returns an empty class. "None" yields ok=false.
func ParseObjectRef(s string) (class, path string, ok bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" || strings.EqualFold(s, "None") {
		return "", "", false
	}
	if i := strings.IndexByte(s, '\''); i >= 0 && strings.HasSuffix(s, "'") && len(s) > i+1 {
		return s[:i], s[i+1 : len(s)-1], true
	}
	return "", s, true
}

// ParseTriple reads polygon coordinates "+00128.000000,-00064.000000,+00000.000000".
func ParseTriple(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("t3d: expected 3 components, got %q", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, fmt.Errorf("t3d: component %d: %w", i, err)
		}
		v[i] = f
	}
	return v, nil
}

// ParseFloat reads a scalar property, returning def when empty.
func ParseFloat(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseColor reads "(R=255,G=128,B=0,A=255)" into 0..1 components.
// Float colours "(R=1.0,G=0.5,B=0.0,A=1.0)" are passed through.
func ParseColor(s string) ([4]float64, error) {
	c := [4]float64{1, 1, 1, 1}
	m, err := ParseStruct(s)
	if err != nil {
		return c, err
	}
	allInt, above := true, false
	for i, k := range [4]string{"r", "g", "b", "a"} {
		raw, ok := m[k]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("t3d: colour %s: %w", k, err)
		}
		if strings.ContainsAny(raw, ".eE") {
			allInt = false
		}
		if f > 1 {
			above = true
		}
		c[i] = f
	}
	if allInt && above {
		for i := range c {
			if _, ok := m[[4]string{"r", "g", "b", "a"}[i]]; ok {
				c[i] /= 255
			}
		}
	}
	return c, nil
}
