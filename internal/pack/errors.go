package pack

import "errors"

// Sentinel errors for the packfile receiver. Wrapped with fmt.Errorf's
// %w at each layer, so callers match with errors.Is.
var (
	// ErrCorruptPack covers structural pack problems: a bad "PACK"
	// signature, an unsupported version, a truncated stream, or a
	// trailer checksum that doesn't match the pack's own bytes.
	ErrCorruptPack = errors.New("corrupt packfile")

	// ErrUnsupportedEntryType is returned for entry types this receiver
	// does not implement: ofs-delta, or any type outside the six the
	// pack format defines.
	ErrUnsupportedEntryType = errors.New("unsupported pack entry type")

	// ErrMissingBase is returned when a ref-delta's base object never
	// appears, neither earlier in the same pack nor in the local
	// object store, even after every other entry has been resolved.
	ErrMissingBase = errors.New("missing delta base object")

	// ErrCorruptDelta covers malformed delta instruction streams: a
	// reserved opcode byte, a copy that runs past the base object, or
	// a resolved object whose length disagrees with the delta header.
	ErrCorruptDelta = errors.New("corrupt delta instructions")
)
