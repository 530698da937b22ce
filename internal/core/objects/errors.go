package objects

import "errors"

// Sentinel errors for the object store's error taxonomy. Callers use
// errors.Is against these after unwrapping a returned error.
var (
	// ErrNotFound is returned when a requested object id is not present
	// in the store (neither as a loose object nor, once implemented, in
	// any packfile).
	ErrNotFound = errors.New("object not found")

	// ErrCorruptHeader is returned when a loose object's decompressed
	// header ("<type> <size>\x00") cannot be parsed, names an unknown
	// type, or disagrees with the payload's actual length.
	ErrCorruptHeader = errors.New("corrupt object header")

	// ErrCorruptZlib is returned when a loose object's on-disk bytes
	// fail to decompress as a valid zlib stream.
	ErrCorruptZlib = errors.New("corrupt zlib stream")
)
