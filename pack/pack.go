package pack

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/aop_browser/utils"
	"github.com/mogaika/aop_browser/vfs"
)

type FileLoader func(src utils.ResourceSource, r *io.SectionReader) (interface{}, error)

var gHandlers map[string]FileLoader = make(map[string]FileLoader, 0)

// SetHandler registers a loader for a file extension such as ".GM".
// Double extensions are keyed by their last part, so "*.tga.tx" goes to ".TX".
func SetHandler(format string, ldr FileLoader) {
	gHandlers[strings.ToUpper(format)] = ldr
}

func Extension(name string) string {
	return strings.ToUpper(filepath.Ext(name))
}

// BaseName strips the directory and the last extension from a file name.
func BaseName(fileName string) string {
	name := filepath.Base(fileName)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func HasHandler(name string) bool {
	_, found := gHandlers[Extension(name)]
	return found
}

func CallHandler(s utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
	ext := Extension(s.Name())

	if h, found := gHandlers[ext]; found {
		return h(s, r)
	} else {
		return nil, errors.Errorf("[pack] Cannot find handler for '%s' extension", ext)
	}
}

// ReadAll loads the whole section; every format here decodes from an in-memory buffer.
func ReadAll(r *io.SectionReader) ([]byte, error) {
	data := make([]byte, r.Size())
	if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "Failed to read")
	}
	return data, nil
}

type PackResSrc struct {
	pf vfs.File
}

func (s *PackResSrc) Name() string {
	return s.pf.Name()
}

func (s *PackResSrc) Size() int64 {
	return s.pf.Size()
}

func GetInstanceHandler(d vfs.Directory, fileName string) (interface{}, error) {
	f, err := vfs.DirectoryGetFile(d, fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get file '%s'", fileName)
	}

	r, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get instance of '%s'", fileName)
	}
	defer f.Close()

	inst, err := CallHandler(&PackResSrc{pf: f}, r)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Handler error on '%s'", fileName)
	}

	return inst, nil
}

// ReadFile returns the raw content of a file in the directory.
func ReadFile(d vfs.Directory, fileName string) ([]byte, error) {
	f, err := vfs.DirectoryGetFile(d, fileName)
	if err != nil {
		return nil, err
	}

	r, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadAll(r)
}
