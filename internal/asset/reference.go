package asset

import (
	"fmt"
	"strings"
)

// Reference is a package-qualified legacy object path such as "MyPackage.Group.MyMesh".
type Reference struct {
	raw   string
	class string
	parts []string
}

// ParseReference validates a reference string without touching the filesystem.
// The class-qualified form used by T3D exports (StaticMesh'Pkg.Mesh') is accepted.
func ParseReference(s string) (Reference, error) {
	raw := strings.TrimSpace(s)
	var class string
	if i := strings.IndexByte(raw, '\''); i > 0 && strings.HasSuffix(raw, "'") && len(raw) > i+1 {
		class = raw[:i]
		raw = raw[i+1 : len(raw)-1]
	}
	raw = strings.Trim(raw, `"`)

	if raw == "" {
		return Reference{}, Errorf(Malformed, s, "empty reference")
	}
	if !strings.Contains(raw, ".") {
		return Reference{}, Errorf(Malformed, s, "missing package separator")
	}
	if strings.ContainsAny(raw, `/\:'"`) || strings.ContainsFunc(raw, isSpace) {
		return Reference{}, Errorf(Malformed, s, "invalid character in reference")
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return Reference{}, Errorf(Malformed, s, "empty path segment")
		}
	}
	return Reference{raw: raw, class: class, parts: parts}, nil
}

// MustParseReference is ParseReference for constants in tests and tables.
func MustParseReference(s string) Reference {
	r, err := ParseReference(s)
	if err != nil {
		panic(err)
	}
	return r
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// String returns the dotted path without any class qualifier.
func (r Reference) String() string { return r.raw }

// Class returns the class qualifier, if the reference carried one.
func (r Reference) Class() string { return r.class }

// Package returns the outermost package name.
func (r Reference) Package() string {
	if len(r.parts) == 0 {
		return ""
	}
	return r.parts[0]
}

// Name returns the object name (last segment).
func (r Reference) Name() string {
	if len(r.parts) == 0 {
		return ""
	}
	return r.parts[len(r.parts)-1]
}

// Segments returns a copy of the dotted path segments.
func (r Reference) Segments() []string {
	return append([]string(nil), r.parts...)
}

// IsZero reports whether r is the zero Reference.
func (r Reference) IsZero() bool { return r.raw == "" }

// Key is the case-insensitive identity used for deduplication and indexing.
func (r Reference) Key() string { return strings.ToLower(r.raw) }

// Qualified renders the T3D class-qualified form when a class is known.
func (r Reference) Qualified() string {
	if r.class == "" {
		return r.raw
	}
	return fmt.Sprintf("%s'%s'", r.class, r.raw)
}
