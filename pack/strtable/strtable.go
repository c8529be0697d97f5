// Package strtable decodes the packed string pool shared by scene records.
// Records refer to names by the byte offset the tools recorded for them, not by index.
package strtable

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/mogaika/aop_browser/binstream"
	"github.com/mogaika/aop_browser/utils"
)

const separator = 0x00

type CountMismatchError struct {
	Declared int
	Found    int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("string table declares %d items, blob holds %d", e.Declared, e.Found)
}

type UnknownOffsetError struct {
	Offset int
}

func (e *UnknownOffsetError) Error() string {
	return fmt.Sprintf("no string starts at offset %d", e.Offset)
}

type Table struct {
	strings  []string
	offsets  []int
	byOffset map[int]string
}

// Decode reads byteLen bytes of NUL separated strings followed by count int32 offsets.
// The i-th offset names the i-th non-empty string; when offsets repeat the first one wins.
func Decode(r *binstream.Reader, byteLen, count int, cm *charmap.Charmap) (*Table, error) {
	if byteLen < 0 || count < 0 {
		return nil, errors.Errorf("Invalid string table size (len %d, count %d)", byteLen, count)
	}
	blob := r.Bytes(byteLen)
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read string blob")
	}

	t := &Table{strings: make([]string, 0)}
	for _, raw := range bytes.Split(blob, []byte{separator}) {
		if len(raw) == 0 {
			continue
		}
		s, err := utils.DecodeString(cm, raw)
		if err != nil {
			return nil, err
		}
		t.strings = append(t.strings, s)
	}
	if len(t.strings) != count {
		return nil, &CountMismatchError{Declared: count, Found: len(t.strings)}
	}

	if err := r.Require(count * 4); err != nil {
		return nil, errors.Wrapf(err, "Failed to read string offsets")
	}
	t.byOffset = make(map[int]string, len(t.strings))
	t.offsets = make([]int, count)
	for i := range t.offsets {
		offset := r.Int()
		t.offsets[i] = offset
		if _, exists := t.byOffset[offset]; !exists {
			t.byOffset[offset] = t.strings[i]
		}
	}
	return t, nil
}

func (t *Table) Lookup(offset int) (string, error) {
	if s, ok := t.byOffset[offset]; ok {
		return s, nil
	}
	return "", &UnknownOffsetError{Offset: offset}
}

func (t *Table) Strings() []string { return t.strings }
func (t *Table) Offsets() []int { return t.offsets }
func (t *Table) Len() int { return len(t.strings) }
