package graphstore

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"

	"github.com/azybler/floodfill_pt/pkg/model"
)

// On-disk layout: a CRC32-checked header followed by CSR-style flat
// arrays for the walk and PT graphs (FirstOut/Head-equivalents) and the
// flat value array, built around this graph's header-slot adjacency
// convention. The CSR form keeps artifact I/O a handful of big
// zero-copy reads; Store.Walk/Store.PT are then materialized into
// independently-owned per-node slices (see readWalkAdjacency and
// readPTAdjacency) so in-memory
// overlays can append to one node's adjacency without aliasing its
// neighbors.
const (
	magicBytes = "FFPTGRPH"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
)

type fileHeader struct {
	Magic             [8]byte
	Version           uint32
	NumNodes          uint32
	PaddingRowCount   uint32
	OriginalNodeCount uint32
	NumWalkEdges      uint32 // includes header slots
	NumPTEdges        uint32 // includes header slots
}

// WriteBinary serializes a Store to a binary artifact at path,
// atomically (write to a temp file, then rename).
func WriteBinary(path string, s *Store) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	cw := &crc32Writer{w: f, hash: crc32.NewIEEE()}

	numWalkEdges := uint32(0)
	walkFirstOut := make([]uint32, len(s.Walk)+1)
	for i, a := range s.Walk {
		walkFirstOut[i] = numWalkEdges
		numWalkEdges += uint32(len(a))
	}
	walkFirstOut[len(s.Walk)] = numWalkEdges

	numPTEdges := uint32(0)
	ptFirstOut := make([]uint32, len(s.PT)+1)
	for i, a := range s.PT {
		ptFirstOut[i] = numPTEdges
		numPTEdges += uint32(len(a))
	}
	ptFirstOut[len(s.PT)] = numPTEdges

	hdr := fileHeader{
		Version:           version,
		NumNodes:          s.NumNodes(),
		PaddingRowCount:   s.PaddingRowCount,
		OriginalNodeCount: s.OriginalNodeCount,
		NumWalkEdges:      numWalkEdges,
		NumPTEdges:        numPTEdges,
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeUint32Slice(cw, walkFirstOut); err != nil {
		return fmt.Errorf("write walk FirstOut: %w", err)
	}
	walkTo := make([]uint32, 0, numWalkEdges)
	walkCost := make([]uint16, 0, numWalkEdges)
	for _, a := range s.Walk {
		for _, e := range a {
			walkTo = append(walkTo, uint32(e.To))
			walkCost = append(walkCost, uint16(e.Cost))
		}
	}
	if err := writeUint32Slice(cw, walkTo); err != nil {
		return fmt.Errorf("write walk To: %w", err)
	}
	if err := writeUint16Slice(cw, walkCost); err != nil {
		return fmt.Errorf("write walk Cost: %w", err)
	}

	if err := writeUint32Slice(cw, ptFirstOut); err != nil {
		return fmt.Errorf("write pt FirstOut: %w", err)
	}
	ptLeave := make([]uint32, 0, numPTEdges)
	ptCost := make([]uint16, 0, numPTEdges)
	for _, a := range s.PT {
		for _, e := range a {
			ptLeave = append(ptLeave, uint32(e.Leavetime))
			ptCost = append(ptCost, uint16(e.Cost))
		}
	}
	if err := writeUint32Slice(cw, ptLeave); err != nil {
		return fmt.Errorf("write pt Leavetime: %w", err)
	}
	if err := writeUint16Slice(cw, ptCost); err != nil {
		return fmt.Errorf("write pt Cost: %w", err)
	}

	if err := writeInt32Slice(cw, s.Values); err != nil {
		return fmt.Errorf("write Values: %w", err)
	}

	checksum := cw.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes a Store from a binary artifact, validating the
// magic, version, CRC32 trailer, and the CSR invariants before
// materializing per-node adjacency slices.
func ReadBinary(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	cr := &crc32Reader{r: f, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumWalkEdges > maxEdges || hdr.NumPTEdges > maxEdges {
		return nil, fmt.Errorf("edge count exceeds limit %d", maxEdges)
	}

	walkFirstOut, err := readUint32Slice(cr, int(hdr.NumNodes)+1)
	if err != nil {
		return nil, fmt.Errorf("read walk FirstOut: %w", err)
	}
	walkTo, err := readUint32Slice(cr, int(hdr.NumWalkEdges))
	if err != nil {
		return nil, fmt.Errorf("read walk To: %w", err)
	}
	walkCost, err := readUint16Slice(cr, int(hdr.NumWalkEdges))
	if err != nil {
		return nil, fmt.Errorf("read walk Cost: %w", err)
	}

	ptFirstOut, err := readUint32Slice(cr, int(hdr.NumNodes)+1)
	if err != nil {
		return nil, fmt.Errorf("read pt FirstOut: %w", err)
	}
	ptLeave, err := readUint32Slice(cr, int(hdr.NumPTEdges))
	if err != nil {
		return nil, fmt.Errorf("read pt Leavetime: %w", err)
	}
	ptCost, err := readUint16Slice(cr, int(hdr.NumPTEdges))
	if err != nil {
		return nil, fmt.Errorf("read pt Cost: %w", err)
	}

	values, err := readInt32Slice(cr, int(hdr.NumNodes)*model.SubpurposeCount)
	if err != nil {
		return nil, fmt.Errorf("read Values: %w", err)
	}

	expectedCRC := cr.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateFirstOut(walkFirstOut, hdr.NumNodes, hdr.NumWalkEdges); err != nil {
		return nil, fmt.Errorf("walk CSR invalid: %w", err)
	}
	if err := validateFirstOut(ptFirstOut, hdr.NumNodes, hdr.NumPTEdges); err != nil {
		return nil, fmt.Errorf("pt CSR invalid: %w", err)
	}

	walk := readWalkAdjacency(walkFirstOut, walkTo, walkCost)
	pt := readPTAdjacency(ptFirstOut, ptLeave, ptCost)

	s := &Store{
		Walk:              walk,
		PT:                pt,
		Values:            values,
		PaddingRowCount:   hdr.PaddingRowCount,
		OriginalNodeCount: hdr.OriginalNodeCount,
	}
	if err := Validate(s); err != nil {
		return nil, fmt.Errorf("artifact failed validation: %w", err)
	}
	return s, nil
}

func readWalkAdjacency(firstOut, to []uint32, cost []uint16) []model.WalkAdjacency {
	n := len(firstOut) - 1
	out := make([]model.WalkAdjacency, n)
	for i := 0; i < n; i++ {
		start, end := firstOut[i], firstOut[i+1]
		adj := make(model.WalkAdjacency, end-start, end-start+4)
		for j := start; j < end; j++ {
			adj[j-start] = model.EdgeWalk{To: model.NodeID(to[j]), Cost: model.Cost(cost[j])}
		}
		out[i] = adj
	}
	return out
}

func readPTAdjacency(firstOut, leave []uint32, cost []uint16) []model.PTAdjacency {
	n := len(firstOut) - 1
	out := make([]model.PTAdjacency, n)
	for i := 0; i < n; i++ {
		start, end := firstOut[i], firstOut[i+1]
		adj := make(model.PTAdjacency, end-start)
		for j := start; j < end; j++ {
			adj[j-start] = model.EdgePT{Leavetime: model.LeavingTime(leave[j]), Cost: model.Cost(cost[j])}
		}
		out[i] = adj
	}
	return out
}

func validateFirstOut(firstOut []uint32, numNodes, numEdges uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	if firstOut[numNodes] != numEdges {
		return fmt.Errorf("FirstOut[NumNodes]=%d != NumEdges=%d", firstOut[numNodes], numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	return nil
}

// Zero-copy slice I/O helpers.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeUint16Slice(w io.Writer, s []uint16) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*2)
	_, err := w.Write(b)
	return err
}

func writeInt32Slice(w io.Writer, s []int32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readUint16Slice(r io.Reader, n int) ([]uint16, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint16, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*2)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt32Slice(r io.Reader, n int) ([]int32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
