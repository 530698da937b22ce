package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ApplyDelta reconstructs a target object's bytes from a base object's
// bytes and a git delta instruction stream (as produced for
// ref-delta/ofs-delta pack entries). See
// https://git-scm.com/docs/pack-format#_deltified_representation.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	r := bytes.NewReader(delta)

	srcSize, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading base size: %v", ErrCorruptDelta, err)
	}
	if srcSize != uint64(len(base)) {
		return nil, fmt.Errorf("%w: delta base size %d does not match actual base length %d", ErrCorruptDelta, srcSize, len(base))
	}

	dstSize, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading target size: %v", ErrCorruptDelta, err)
	}

	result := make([]byte, 0, dstSize)

	for r.Len() > 0 {
		opcode, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDelta, err)
		}

		if opcode&0x80 == 0 {
			// Insert: the low 7 bits are a literal byte count; 0 is
			// reserved and never produced by a valid encoder.
			n := int(opcode & 0x7f)
			if n == 0 {
				return nil, fmt.Errorf("%w: reserved zero-length insert opcode", ErrCorruptDelta)
			}
			buf := make([]byte, n)
			if _, err := readFull(r, buf); err != nil {
				return nil, fmt.Errorf("%w: short insert payload: %v", ErrCorruptDelta, err)
			}
			result = append(result, buf...)
			continue
		}

		// Copy: bits 0-3 select which offset bytes follow (little
		// endian, least significant byte first), bits 4-6 select
		// which size bytes follow. A size of 0 means 0x10000.
		var offset, size uint32
		for i := uint(0); i < 4; i++ {
			if opcode&(1<<i) != 0 {
				b, err := r.ReadByte()
				if err != nil {
					return nil, fmt.Errorf("%w: short copy offset: %v", ErrCorruptDelta, err)
				}
				offset |= uint32(b) << (8 * i)
			}
		}
		for i := uint(0); i < 3; i++ {
			if opcode&(1<<(4+i)) != 0 {
				b, err := r.ReadByte()
				if err != nil {
					return nil, fmt.Errorf("%w: short copy size: %v", ErrCorruptDelta, err)
				}
				size |= uint32(b) << (8 * i)
			}
		}
		if size == 0 {
			size = 0x10000
		}

		start := int(offset)
		end := start + int(size)
		if start < 0 || end > len(base) || start > end {
			return nil, fmt.Errorf("%w: copy [%d:%d] out of base range [0:%d]", ErrCorruptDelta, start, end, len(base))
		}
		result = append(result, base[start:end]...)
	}

	if uint64(len(result)) != dstSize {
		return nil, fmt.Errorf("%w: resolved length %d does not match target size %d", ErrCorruptDelta, len(result), dstSize)
	}

	return result, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, fmt.Errorf("no progress reading delta stream")
		}
	}
	return n, nil
}
