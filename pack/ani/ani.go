// Package ani parses clip descriptions: ini-like text where every section names a clip
// and keys may repeat.
package ani

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/mogaika/aop_browser/pack"
	"github.com/mogaika/aop_browser/utils"
)

const (
	commentChar = ';'
	escapeChar  = '\\'
)

type Section struct {
	Name string
	// Keys in order of first appearance.
	Keys   []string
	Values map[string][]string
}

func newSection(name string) *Section {
	return &Section{
		Name:   name,
		Keys:   make([]string, 0),
		Values: make(map[string][]string),
	}
}

func (s *Section) add(key, value string) {
	if _, ok := s.Values[key]; !ok {
		s.Keys = append(s.Keys, key)
	}
	s.Values[key] = append(s.Values[key], value)
}

func (s *Section) Get(key string) []string {
	return s.Values[key]
}

func (s *Section) First(key string) (string, bool) {
	if values := s.Values[key]; len(values) != 0 {
		return values[0], true
	}
	return "", false
}

type Description struct {
	Sections []*Section
	byName   map[string]*Section
}

// Section returns a section by name; "" is the section of lines before any header.
func (d *Description) Section(name string) *Section {
	return d.byName[name]
}

func (d *Description) open(name string) *Section {
	s, ok := d.byName[name]
	if !ok {
		s = newSection(name)
		d.byName[name] = s
		d.Sections = append(d.Sections, s)
	}
	return s
}

// stripComment cuts the line at the first ';' that is not preceded by '\'.
// Escaped semicolons stay in the text without the backslash.
func stripComment(line string) string {
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == escapeChar && i+1 < len(line) && line[i+1] == commentChar {
			sb.WriteByte(commentChar)
			i++
			continue
		}
		if c == commentChar {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func cleanLine(line string) string {
	return strings.TrimSpace(stripComment(strings.TrimSpace(line)))
}

// parseSectionName takes the text between the first '[' and the first ']' after it.
func parseSectionName(line string) (string, bool) {
	open := strings.IndexByte(line, '[')
	if open < 0 {
		return "", false
	}
	close := strings.IndexByte(line[open+1:], ']')
	if close < 0 {
		return "", false
	}
	return strings.TrimSpace(line[open+1 : open+1+close]), true
}

// parseKeyValue splits on the first '='. Pairs with an empty side are not entries.
func parseKeyValue(line string) (string, string, bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:eq])
	value := strings.TrimSpace(line[eq+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func Parse(data []byte) *Description {
	d := &Description{
		Sections: make([]*Section, 0),
		byName:   make(map[string]*Section),
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	current := ""
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), len(data)+1)
	for scanner.Scan() {
		line := cleanLine(scanner.Text())
		if line == "" {
			continue
		}

		if name, ok := parseSectionName(line); ok {
			current = name
			d.open(current)
		} else if key, value, ok := parseKeyValue(line); ok {
			d.open(current).add(key, value)
		}
	}

	return d
}

func escape(s string) string {
	return strings.ReplaceAll(s, string(commentChar), string([]byte{escapeChar, commentChar}))
}

// String writes the description back; the unnamed section goes without a header.
func (d *Description) String() string {
	var sb strings.Builder
	for _, s := range d.Sections {
		if s.Name != "" {
			sb.WriteString("[" + escape(s.Name) + "]\n")
		}
		for _, key := range s.Keys {
			for _, value := range s.Values[key] {
				sb.WriteString(escape(key) + " = " + escape(value) + "\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func init() {
	pack.SetHandler(".ANI", func(p utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		data, err := pack.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return Parse(data), nil
	})
}
