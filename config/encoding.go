package config

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// String tables and clip descriptions are single-byte text; the studio tools wrote them in the
// system code page, which is Windows 1252 for every file seen so far.
var currentCharMap *charmap.Charmap = charmap.Windows1252

func SetEncoding(name string) error {
	cm, err := FindEncoding(name)
	if err != nil {
		return err
	}
	currentCharMap = cm
	return nil
}

func FindEncoding(name string) (*charmap.Charmap, error) {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				return cm, nil
			}
		}
	}
	return nil, errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
