package store

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/knntune/blobstore"
	"github.com/hupe1980/knntune/codec"
	"github.com/hupe1980/knntune/internal/conv"
	"github.com/hupe1980/knntune/internal/mmap"
)

// Compression selects the snapshot payload compression.
type Compression uint8

const (
	// CompressionNone stores the payload raw. Uncompressed snapshots can
	// be decoded zero-copy from a memory mapping.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

// Snapshot file layout, all integers little-endian:
//
//	[0:4]   magic "KNNT"
//	[4]     format version (1)
//	[5]     compression
//	[6:8]   reserved
//	[8:12]  meta length
//	[12:..] meta (JSON)
//	pad to 8-byte boundary
//	payload: features (rows*dim float64) then labels (rows uint32)
//
// Compressed payloads carry a block header [uncompressedSize uint32]
// [compressedSize uint32] before the data; compressedSize 0 means the
// block is stored raw because compression did not help.
const (
	snapshotMagic   = "KNNT"
	snapshotVersion = 1
	headerSize      = 12
	blockHeaderSize = 8
)

type snapshotMeta struct {
	Rows    int      `json:"rows"`
	Dim     int      `json:"dim"`
	Classes []string `json:"classes"`
	Schema  Schema   `json:"schema"`
}

// Snapshot serializes the store into the snapshot format.
func (s *Store) Snapshot(c Compression) ([]byte, error) {
	meta, err := codec.Default.Marshal(snapshotMeta{
		Rows:    s.Len(),
		Dim:     s.dim,
		Classes: s.classes,
		Schema:  s.schema,
	})
	if err != nil {
		return nil, err
	}

	payload := s.encodePayload()
	if c != CompressionNone {
		payload, err = compressBlock(payload, c)
		if err != nil {
			return nil, err
		}
	}

	payloadOff := align8(headerSize + len(meta))
	buf := make([]byte, payloadOff+len(payload))
	copy(buf[0:4], snapshotMagic)
	buf[4] = snapshotVersion
	buf[5] = byte(c)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(meta)))
	copy(buf[headerSize:], meta)
	copy(buf[payloadOff:], payload)
	return buf, nil
}

func (s *Store) encodePayload() []byte {
	buf := make([]byte, len(s.features)*8+len(s.labels)*4)
	off := 0
	for _, v := range s.features {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		off += 8
	}
	for _, id := range s.labels {
		binary.LittleEndian.PutUint32(buf[off:], id)
		off += 4
	}
	return buf
}

// Decode reconstructs a store from snapshot bytes. If closer is non-nil it
// is adopted by the store and released on Close; data must then stay valid
// for the store's lifetime, since uncompressed payloads are decoded
// zero-copy where alignment allows.
func Decode(data []byte, closer io.Closer) (*Store, error) {
	if len(data) < headerSize || string(data[0:4]) != snapshotMagic {
		return nil, &ErrSnapshotCorrupted{Reason: "bad magic"}
	}
	if data[4] != snapshotVersion {
		return nil, &ErrSnapshotCorrupted{Reason: "unsupported version"}
	}
	compression := Compression(data[5])

	metaLen := int(binary.LittleEndian.Uint32(data[8:12]))
	if headerSize+metaLen > len(data) {
		return nil, &ErrSnapshotCorrupted{Reason: "meta extends beyond data"}
	}
	var meta snapshotMeta
	if err := codec.Default.Unmarshal(data[headerSize:headerSize+metaLen], &meta); err != nil {
		return nil, &ErrSnapshotCorrupted{Reason: "bad meta: " + err.Error()}
	}
	if meta.Rows < 0 || meta.Dim < 0 {
		return nil, &ErrSnapshotCorrupted{Reason: "negative dimensions"}
	}

	payloadOff := align8(headerSize + metaLen)
	if payloadOff > len(data) {
		return nil, &ErrSnapshotCorrupted{Reason: "payload extends beyond data"}
	}
	payload := data[payloadOff:]
	if compression != CompressionNone {
		var err error
		payload, err = decompressBlock(payload, compression)
		if err != nil {
			return nil, &ErrSnapshotCorrupted{Reason: err.Error()}
		}
	}

	// Meta is untrusted; bound rows and dim against the payload before
	// multiplying so oversized values cannot overflow the size math.
	if meta.Dim > (math.MaxInt-4)/8 {
		return nil, &ErrSnapshotCorrupted{Reason: "payload too small"}
	}
	rowBytes := meta.Dim*8 + 4
	if meta.Rows > len(payload)/rowBytes {
		return nil, &ErrSnapshotCorrupted{Reason: "payload too small"}
	}
	featBytes := meta.Rows * meta.Dim * 8
	labBytes := meta.Rows * 4
	if len(payload) < featBytes+labBytes {
		return nil, &ErrSnapshotCorrupted{Reason: "payload too small"}
	}

	features, ok := conv.Float64Slice(payload[:featBytes])
	if !ok {
		features = decodeFloats(payload[:featBytes])
	}
	labels, ok := conv.Uint32Slice(payload[featBytes : featBytes+labBytes])
	if !ok {
		labels = decodeUint32s(payload[featBytes : featBytes+labBytes])
	}

	for _, id := range labels {
		if int(id) >= len(meta.Classes) {
			return nil, &ErrSnapshotCorrupted{Reason: "label id out of range"}
		}
	}

	classIdx := make(map[string]uint32, len(meta.Classes))
	for i, name := range meta.Classes {
		classIdx[name] = uint32(i)
	}

	return &Store{
		dim:      meta.Dim,
		features: features,
		labels:   labels,
		classes:  meta.Classes,
		classIdx: classIdx,
		schema:   meta.Schema,
		closer:   closer,
	}, nil
}

// WriteSnapshot writes the store to a file atomically (temp file + rename).
func (s *Store) WriteSnapshot(path string, c Compression) error {
	data, err := s.Snapshot(c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// OpenSnapshot memory-maps a snapshot file and decodes it. Uncompressed
// snapshots are decoded zero-copy, so concurrent processes opening the same
// file share one physical copy of the sample block. The mapping is released
// when the store is closed.
func OpenSnapshot(path string) (*Store, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	// Classification probes rows in neighbor order, not file order
	_ = m.Advise(mmap.AccessRandom)

	s, err := Decode(m.Bytes(), m)
	if err != nil {
		m.Close()
		return nil, err
	}
	return s, nil
}

// SaveTo writes the store's snapshot to a blob store.
func (s *Store) SaveTo(ctx context.Context, bs blobstore.BlobStore, name string, c Compression) error {
	data, err := s.Snapshot(c)
	if err != nil {
		return err
	}
	return bs.Put(ctx, name, data)
}

// OpenFrom opens a snapshot from a blob store. Mappable blobs (local disk)
// are decoded zero-copy and stay mapped until the store is closed; other
// backends are read fully into memory.
func OpenFrom(ctx context.Context, bs blobstore.BlobStore, name string) (*Store, error) {
	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			blob.Close()
			return nil, err
		}
		s, err := Decode(data, blob)
		if err != nil {
			blob.Close()
			return nil, err
		}
		return s, nil
	}

	data, err := blobstore.ReadAll(blob)
	if err != nil {
		blob.Close()
		return nil, err
	}
	if err := blob.Close(); err != nil {
		return nil, err
	}
	return Decode(data, nil)
}

func align8(n int) int { return (n + 7) &^ 7 }

func decodeFloats(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}

func decodeUint32s(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

// compressBlock compresses the payload, prepending the block header.
// Incompressible payloads are stored raw with compressedSize 0.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		compressed = enc.EncodeAll(data, nil)
		enc.Close()
	}

	if len(compressed) == 0 || len(compressed) >= len(data) {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

// decompressBlock reverses compressBlock.
func decompressBlock(data []byte, c Compression) ([]byte, error) {
	if len(data) < blockHeaderSize {
		return nil, &ErrSnapshotCorrupted{Reason: "block too small for header"}
	}
	// Widen before adding the header size; uint32 arithmetic would wrap
	// for sizes near MaxUint32 and defeat the bounds checks.
	uncompressedSize := int64(binary.LittleEndian.Uint32(data[0:]))
	compressedSize := int64(binary.LittleEndian.Uint32(data[4:]))

	if compressedSize == 0 {
		if int64(len(data)) < blockHeaderSize+uncompressedSize {
			return nil, &ErrSnapshotCorrupted{Reason: "block data too small"}
		}
		return data[blockHeaderSize : blockHeaderSize+uncompressedSize], nil
	}

	if int64(len(data)) < blockHeaderSize+compressedSize {
		return nil, &ErrSnapshotCorrupted{Reason: "compressed block data too small"}
	}
	compressedData := data[blockHeaderSize : blockHeaderSize+compressedSize]
	result := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, err
		}
		if int64(n) != uncompressedSize {
			return nil, &ErrSnapshotCorrupted{Reason: "decompressed size mismatch"}
		}
		return result, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		decoded, err := dec.DecodeAll(compressedData, result[:0])
		if err != nil {
			return nil, err
		}
		if int64(len(decoded)) != uncompressedSize {
			return nil, &ErrSnapshotCorrupted{Reason: "decompressed size mismatch"}
		}
		return decoded, nil
	default:
		return nil, &ErrSnapshotCorrupted{Reason: "unknown compression"}
	}
}
