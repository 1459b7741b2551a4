package decay

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/azybler/floodfill_pt/pkg/model"
)

// On-disk layout: four length-prefixed int32 tables followed by the
// fixed 32-byte subpurpose->purpose lookup, with the same zero-copy
// unsafe.Slice read/write technique as pkg/graphstore/binary.go. Decay
// tables are process-global, not per-year, so this is loaded once at
// startup.
const magicBytes = "FFPTDECY"

// LoadFile reads a Store from a single binary artifact at path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decay: open: %w", err)
	}
	defer f.Close()

	var magic [8]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, fmt.Errorf("decay: read magic: %w", err)
	}
	if string(magic[:]) != magicBytes {
		return nil, fmt.Errorf("decay: invalid magic bytes: %q", magic)
	}

	var tables [TableCount]Table
	for i := range tables {
		var n uint32
		if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("decay: read table %d length: %w", i, err)
		}
		t := make(Table, n)
		if n > 0 {
			b := unsafe.Slice((*byte)(unsafe.Pointer(&t[0])), int(n)*4)
			if _, err := io.ReadFull(f, b); err != nil {
				return nil, fmt.Errorf("decay: read table %d: %w", i, err)
			}
		}
		tables[i] = t
	}

	var lookup [model.SubpurposeCount]int8
	lb := unsafe.Slice((*byte)(unsafe.Pointer(&lookup[0])), model.SubpurposeCount)
	if _, err := io.ReadFull(f, lb); err != nil {
		return nil, fmt.Errorf("decay: read subpurpose lookup: %w", err)
	}

	return NewStore(tables, lookup)
}

// WriteFile serializes a Store to path, for tooling that assembles
// decay tables offline.
func WriteFile(path string, s *Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("decay: create: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(magicBytes); err != nil {
		return err
	}
	for i, t := range s.Tables {
		if err := binary.Write(f, binary.LittleEndian, uint32(len(t))); err != nil {
			return fmt.Errorf("decay: write table %d length: %w", i, err)
		}
		if len(t) > 0 {
			b := unsafe.Slice((*byte)(unsafe.Pointer(&t[0])), len(t)*4)
			if _, err := f.Write(b); err != nil {
				return fmt.Errorf("decay: write table %d: %w", i, err)
			}
		}
	}
	lb := unsafe.Slice((*byte)(unsafe.Pointer(&s.SubpurposePurposeLookup[0])), model.SubpurposeCount)
	_, err = f.Write(lb)
	return err
}
