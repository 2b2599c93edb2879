package t3d

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads a T3D file.
func Parse(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("t3d: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("t3d: %s: %w", path, err)
	}
	return doc, nil
}

// Read parses T3D text from r.
func Read(r io.Reader) (*Document, error) {
	doc := &Document{}
	var stack []*Block

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, ";") {
			continue
		}

		word, rest := splitWord(line)
		switch {
		case strings.EqualFold(word, "Begin"):
			typ, attrs := splitWord(rest)
			if typ == "" {
				return nil, fmt.Errorf("line %d: Begin without block type", lineNo)
			}
			b := &Block{Type: typ, Attrs: parseAttrs(attrs), Line: lineNo}
			if n := len(stack); n > 0 {
				stack[n-1].Children = append(stack[n-1].Children, b)
			} else {
				doc.Blocks = append(doc.Blocks, b)
			}
			stack = append(stack, b)

		case strings.EqualFold(word, "End"):
			typ, _ := splitWord(rest)
			n := len(stack)
			if n == 0 {
				return nil, fmt.Errorf("line %d: End %s without Begin", lineNo, typ)
			}
			if !strings.EqualFold(stack[n-1].Type, typ) {
				return nil, fmt.Errorf("line %d: End %s closes Begin %s (line %d)",
					lineNo, typ, stack[n-1].Type, stack[n-1].Line)
			}
			stack = stack[:n-1]

		default:
			if len(stack) == 0 {
				// stray text outside any block
				continue
			}
			top := stack[len(stack)-1]
			top.Props = append(top.Props, parseProp(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if n := len(stack); n > 0 {
		return nil, fmt.Errorf("unterminated Begin %s (line %d)", stack[n-1].Type, stack[n-1].Line)
	}
	return doc, nil
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func parseProp(line string) Prop {
	eq := strings.IndexByte(line, '=')
	sp := strings.IndexAny(line, " \t")
	if eq > 0 && (sp < 0 || eq < sp) {
		return Prop{Key: strings.TrimSpace(line[:eq]), Value: strings.TrimSpace(line[eq+1:])}
	}
	k, v := splitWord(line)
	return Prop{Key: k, Value: v}
}

// parseAttrs splits "Class=X Name=Y Archetype=A'B'" honoring double quotes.
func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, tok := range tokenize(s) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		attrs[strings.ToLower(k)] = strings.Trim(v, `"`)
	}
	return attrs
}

func tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	quoted := false
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && !quoted:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
