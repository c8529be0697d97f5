package vfs

import (
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

func OpenFileAndGetReader(f File) (*io.SectionReader, error) {
	if err := f.Open(); err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", f.Name())
	}
	r, err := f.Reader()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "Cannot get file '%s' reader", f.Name())
	}
	return r, nil
}

func DirectoryGetFile(d Directory, name string) (File, error) {
	e, err := d.GetElement(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", name)
	}
	if e.IsDirectory() {
		return nil, errors.Errorf("File '%s' is directory, not a file!", name)
	}
	return e.(File), nil
}

// FindFile looks a name up ignoring case; exported assets are named by hand.
func FindFile(d Directory, name string) (string, bool, error) {
	names, err := d.List()
	if err != nil {
		return "", false, err
	}
	for _, n := range names {
		if n == name {
			return n, true, nil
		}
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, true, nil
		}
	}
	return "", false, nil
}

// ListFiles returns sorted names of plain files whose names pass the filter.
func ListFiles(d Directory, filter func(name string) bool) ([]string, error) {
	names, err := d.List()
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(names))
	for _, name := range names {
		e, err := d.GetElement(name)
		if err != nil || e.IsDirectory() {
			continue
		}
		if filter == nil || filter(name) {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result, nil
}
