// Package pack implements a receive-only reader for git's packfile
// format: header validation, per-entry type/size/zlib decoding, and
// ref-delta resolution. It never writes packfiles (the reference
// tool's own pack-objects machinery is out of scope here) and it does
// not support ofs-delta entries, multi-ack negotiation, or protocol
// v2 — all explicitly unsupported by the receiver this package backs.
package pack

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arvk/gitkit/internal/core/objects"
)

// entryType is a pack entry's low-level type tag, distinct from
// objects.ObjectType because it additionally has delta variants.
type entryType byte

const (
	entryCommit   entryType = 1
	entryTree     entryType = 2
	entryBlob     entryType = 3
	entryTag      entryType = 4
	entryOfsDelta entryType = 6
	entryRefDelta entryType = 7
)

func (t entryType) objectType() (objects.ObjectType, bool) {
	switch t {
	case entryCommit:
		return objects.TypeCommit, true
	case entryTree:
		return objects.TypeTree, true
	case entryBlob:
		return objects.TypeBlob, true
	case entryTag:
		return objects.TypeTag, true
	default:
		return "", false
	}
}

// Result summarizes a successful pack parse.
type Result struct {
	// IDs lists every object id the pack contributed: the non-delta
	// entries in pack order, followed by the ref-delta targets in the
	// order the fixpoint loop resolved them.
	IDs []objects.ObjectID
}

type pendingDelta struct {
	baseID objects.ObjectID
	data   []byte
}

// Parser decodes a packfile's bytes and persists every object it
// contains into a Storage.
type Parser struct {
	storage *objects.Storage
}

// NewParser creates a Parser that writes resolved objects into storage.
func NewParser(storage *objects.Storage) *Parser {
	return &Parser{storage: storage}
}

// Parse validates and decodes raw as a complete packfile, writing every
// object (including every ref-delta's resolved target) into the
// parser's Storage.
func (p *Parser) Parse(raw []byte) (*Result, error) {
	if len(raw) < 12+20 {
		return nil, fmt.Errorf("%w: pack too short (%d bytes)", ErrCorruptPack, len(raw))
	}

	if string(raw[:4]) != "PACK" {
		return nil, fmt.Errorf("%w: bad signature %q", ErrCorruptPack, raw[:4])
	}

	version := binary.BigEndian.Uint32(raw[4:8])
	if version != 2 && version != 3 {
		return nil, fmt.Errorf("%w: unsupported pack version %d", ErrCorruptPack, version)
	}

	count := binary.BigEndian.Uint32(raw[8:12])

	trailer := raw[len(raw)-20:]
	body := raw[:len(raw)-20]
	sum := sha1.Sum(body[:len(body)])
	if !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("%w: trailer checksum mismatch", ErrCorruptPack)
	}

	reader := bytes.NewReader(raw[12 : len(raw)-20])

	resolved := make(map[objects.ObjectID]cachedEntry, count)
	var pending []pendingDelta
	var order []objects.ObjectID

	for i := uint32(0); i < count; i++ {
		kind, size, err := readEntryHeader(reader)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d header: %v", ErrCorruptPack, i, err)
		}

		switch kind {
		case entryOfsDelta:
			return nil, fmt.Errorf("%w: ofs-delta (entry %d)", ErrUnsupportedEntryType, i)
		case entryRefDelta:
			var baseID objects.ObjectID
			if _, err := io.ReadFull(reader, baseID[:]); err != nil {
				return nil, fmt.Errorf("%w: entry %d: short ref-delta base: %v", ErrCorruptPack, i, err)
			}
			data, err := inflate(reader, size)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptPack, i, err)
			}
			pending = append(pending, pendingDelta{baseID: baseID, data: data})

		default:
			objType, ok := kind.objectType()
			if !ok {
				return nil, fmt.Errorf("%w: entry %d type %d", ErrUnsupportedEntryType, i, kind)
			}
			data, err := inflate(reader, size)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptPack, i, err)
			}
			id, err := p.store(objType, data, resolved)
			if err != nil {
				return nil, err
			}
			order = append(order, id)
		}
	}

	resolvedOrder, err := p.resolvePending(pending, resolved)
	if err != nil {
		return nil, err
	}
	order = append(order, resolvedOrder...)

	return &Result{IDs: order}, nil
}

type cachedEntry struct {
	kind objects.ObjectType
	data []byte
}

// store writes an object and remembers it in resolved so that later
// ref-deltas in the same pack can use it as a base without rereading
// from disk. Tree and commit payloads are first fed through
// ObjectCodec's parser so a malformed payload inside an otherwise
// well-formed pack surfaces as a parse error instead of being
// persisted silently.
func (p *Parser) store(kind objects.ObjectType, data []byte, resolved map[objects.ObjectID]cachedEntry) (objects.ObjectID, error) {
	id := objects.ComputeHash(kind, data)
	switch kind {
	case objects.TypeTree:
		if _, err := objects.ParseTree(id, data); err != nil {
			return objects.ObjectID{}, fmt.Errorf("%w: malformed tree entry %s: %v", ErrCorruptPack, id, err)
		}
	case objects.TypeCommit:
		if _, err := objects.ParseCommit(id, data); err != nil {
			return objects.ObjectID{}, fmt.Errorf("%w: malformed commit entry %s: %v", ErrCorruptPack, id, err)
		}
	}

	id, err := p.storage.WriteRaw(kind, data)
	if err != nil {
		return objects.ObjectID{}, fmt.Errorf("failed to store object: %w", err)
	}
	resolved[id] = cachedEntry{kind: kind, data: data}
	return id, nil
}

// resolvePending applies every queued ref-delta, retrying in rounds
// until a fixpoint: a delta whose base was itself a later delta in the
// pack only becomes resolvable once that base has been applied.
func (p *Parser) resolvePending(pending []pendingDelta, resolved map[objects.ObjectID]cachedEntry) ([]objects.ObjectID, error) {
	var order []objects.ObjectID

	for len(pending) > 0 {
		progressed := false
		var stillPending []pendingDelta

		for _, pd := range pending {
			base, ok := resolved[pd.baseID]
			if !ok {
				if obj, err := p.storage.ReadObject(pd.baseID); err == nil {
					rawData, serr := obj.Serialize()
					if serr == nil {
						base = cachedEntry{kind: obj.Type(), data: rawData}
						ok = true
					}
				}
			}
			if !ok {
				stillPending = append(stillPending, pd)
				continue
			}

			target, err := ApplyDelta(base.data, pd.data)
			if err != nil {
				return nil, err
			}

			id, err := p.store(base.kind, target, resolved)
			if err != nil {
				return nil, err
			}
			order = append(order, id)
			progressed = true
		}

		if !progressed {
			return nil, fmt.Errorf("%w: %d delta(s) never found their base", ErrMissingBase, len(stillPending))
		}
		pending = stillPending
	}

	return order, nil
}

// readEntryHeader parses a pack entry's type+size header: the first
// byte holds a continuation bit, a 3-bit type, and 4 low size bits;
// each continuation byte contributes 7 more size bits.
func readEntryHeader(r *bytes.Reader) (entryType, int64, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	kind := entryType((b >> 4) & 0x07)
	size := int64(b & 0x0f)
	shift := uint(4)

	for b&0x80 != 0 {
		b, err = r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		size |= int64(b&0x7f) << shift
		shift += 7
	}

	return kind, size, nil
}

// inflate zlib-decompresses exactly one entry's payload from r,
// leaving r positioned immediately after the compressed stream (zlib's
// flate decoder reads byte-by-byte from a bytes.Reader without
// over-buffering, so no lookahead needs to be rewound). It verifies
// the decompressed length against the size the entry header declared.
func inflate(r *bytes.Reader, size int64) ([]byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPack, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPack, err)
	}

	if int64(len(data)) != size {
		return nil, fmt.Errorf("%w: declared size %d, got %d", ErrCorruptPack, size, len(data))
	}

	return data, nil
}
