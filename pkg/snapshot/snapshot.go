// Package snapshot persists a reactor's final state.
//
// File layout:
//
//	"RBTS" | version (1 byte) | zstd(payload) | xxhash64(payload) (8 bytes, LE)
//
// The payload is the region followed by a uvarint fragment count and the
// fragments, every bound a zigzag varint in XMin XMax YMin YMax ZMin ZMax
// order.
package snapshot

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/chazu/reboot/pkg/cuboid"
	"github.com/klauspost/compress/zstd"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("snapshot")

const (
	magic   = "RBTS"
	Version = 1

	headerSize  = len(magic) + 1
	trailerSize = 8
)

var (
	ErrBadMagic = errors.New("snapshot: not a reboot snapshot")
	ErrVersion  = errors.New("snapshot: unsupported version")
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	ErrCorrupt  = errors.New("snapshot: corrupt payload")
)

// State is a persisted reactor state.
type State struct {
	Region  cuboid.Cuboid
	Cuboids []cuboid.Cuboid
}

// Bounded returns the number of lit cells inside the region.
func (s *State) Bounded() uint64 {
	return cuboid.BoundedVolume(s.Cuboids, s.Region)
}

// Total returns the number of lit cells.
func (s *State) Total() uint64 {
	return cuboid.TotalVolume(s.Cuboids)
}

func appendCuboid(b []byte, c cuboid.Cuboid) []byte {
	for _, v := range [6]int{c.XMin, c.XMax, c.YMin, c.YMax, c.ZMin, c.ZMax} {
		b = binary.AppendVarint(b, int64(v))
	}
	return b
}

func payload(s *State) []byte {
	b := make([]byte, 0, 8+len(s.Cuboids)*12)
	b = appendCuboid(b, s.Region)
	b = binary.AppendUvarint(b, uint64(len(s.Cuboids)))
	for _, c := range s.Cuboids {
		b = appendCuboid(b, c)
	}
	return b
}

// Encode serializes s with the given zstd level.
func Encode(s *State, level zstd.EncoderLevel) ([]byte, error) {
	raw := payload(s)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating encoder: %w", err)
	}
	defer enc.Close()

	out := make([]byte, 0, headerSize+len(raw)/2+trailerSize)
	out = append(out, magic...)
	out = append(out, Version)
	out = enc.EncodeAll(raw, out)
	out = binary.LittleEndian.AppendUint64(out, xxhash.Sum64(raw))
	log.Debugf("encoded %d fragments: %d raw bytes, %d on disk", len(s.Cuboids), len(raw), len(out))
	return out, nil
}

// reader walks a payload.
type reader struct {
	b   []byte
	err error
}

func (r *reader) varint() int {
	if r.err != nil {
		return 0
	}
	v, n := binary.Varint(r.b)
	if n <= 0 {
		r.err = fmt.Errorf("%w: truncated varint", ErrCorrupt)
		return 0
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		r.err = fmt.Errorf("%w: bound %d out of range", ErrCorrupt, v)
		return 0
	}
	r.b = r.b[n:]
	return int(v)
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.b)
	if n <= 0 {
		r.err = fmt.Errorf("%w: truncated count", ErrCorrupt)
		return 0
	}
	r.b = r.b[n:]
	return v
}

func (r *reader) cuboid() cuboid.Cuboid {
	return cuboid.New(r.varint(), r.varint(), r.varint(), r.varint(), r.varint(), r.varint())
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (*State, error) {
	if len(data) < headerSize+trailerSize || string(data[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}
	if v := data[len(magic)]; v != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}

	body := data[headerSize : len(data)-trailerSize]
	sum := binary.LittleEndian.Uint64(data[len(data)-trailerSize:])

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: creating decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if xxhash.Sum64(raw) != sum {
		return nil, ErrChecksum
	}

	r := &reader{b: raw}
	s := &State{Region: r.cuboid()}
	n := r.uvarint()
	// Every fragment takes at least six bytes.
	if r.err == nil && n > uint64(len(r.b))/6 {
		return nil, fmt.Errorf("%w: %d fragments in %d bytes", ErrCorrupt, n, len(r.b))
	}
	s.Cuboids = make([]cuboid.Cuboid, 0, n)
	for i := uint64(0); i < n && r.err == nil; i++ {
		s.Cuboids = append(s.Cuboids, r.cuboid())
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(r.b) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(r.b))
	}
	return s, nil
}

// Save encodes s at the default level and writes it to path.
func Save(path string, s *State) error {
	data, err := Encode(s, zstd.SpeedDefault)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: writing %s: %w", path, err)
	}
	return nil
}

// Load reads and decodes the snapshot at path.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading %s: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Fingerprint hashes a decomposition independently of fragment order. Two
// different decompositions of the same cell set hash differently.
func Fingerprint(cs []cuboid.Cuboid) uint64 {
	sorted := slices.Clone(cs)
	slices.SortFunc(sorted, compareCuboids)
	d := xxhash.New()
	var buf []byte
	for _, c := range sorted {
		buf = appendCuboid(buf[:0], c)
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

func compareCuboids(a, b cuboid.Cuboid) int {
	return cmp.Or(
		cmp.Compare(a.XMin, b.XMin), cmp.Compare(a.XMax, b.XMax),
		cmp.Compare(a.YMin, b.YMin), cmp.Compare(a.YMax, b.YMax),
		cmp.Compare(a.ZMin, b.ZMin), cmp.Compare(a.ZMax, b.ZMax),
	)
}
