package objects

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/arvk/gitkit/internal/objcache"
)

// Storage handles reading and writing loose git objects under a
// repository's objects/ directory.
type Storage struct {
	basePath string
	mu       sync.RWMutex
	cache    *objcache.Cache
}

// NewStorage creates a new object storage rooted at gitDir/objects.
func NewStorage(gitDir string) *Storage {
	return &Storage{
		basePath: filepath.Join(gitDir, "objects"),
		cache:    objcache.New(),
	}
}

// Init initializes the object storage directory structure.
func (s *Storage) Init() error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create objects directory: %w", err)
	}

	for i := 0; i < 256; i++ {
		dir := filepath.Join(s.basePath, fmt.Sprintf("%02x", i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create object subdirectory: %w", err)
		}
	}

	packDir := filepath.Join(s.basePath, "pack")
	if err := os.MkdirAll(packDir, 0755); err != nil {
		return fmt.Errorf("failed to create pack directory: %w", err)
	}

	infoDir := filepath.Join(s.basePath, "info")
	if err := os.MkdirAll(infoDir, 0755); err != nil {
		return fmt.Errorf("failed to create info directory: %w", err)
	}

	return nil
}

// WriteObject writes an object to storage. Writes are idempotent: if an
// object with this id already exists on disk, WriteObject is a no-op
// (content-addressing guarantees the existing bytes are already
// correct, so there is nothing to overwrite).
func (s *Storage) WriteObject(obj Object) error {
	id := obj.ID()

	if s.HasObject(id) {
		return nil
	}

	data, err := obj.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize object: %w", err)
	}

	return s.writeRaw(id, obj.Type(), data)
}

// writeRaw compresses and writes a loose object file for id holding
// kind/data, then caches the decompressed payload. Loose object files
// are written read-only (0444): git itself never rewrites a loose
// object in place, and this store preserves that invariant by writing
// to a temporary file first and renaming it into place.
func (s *Storage) writeRaw(id ObjectID, kind ObjectType, data []byte) error {
	header := fmt.Sprintf("%s %d\x00", kind, len(data))
	fullData := append([]byte(header), data...)

	compressed, err := compressData(fullData)
	if err != nil {
		return fmt.Errorf("failed to compress object: %w", err)
	}

	path := s.objectPath(id)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, compressed, 0444); err != nil {
		return fmt.Errorf("failed to write object file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize object file: %w", err)
	}

	s.cache.Put(objcache.Key(id), objcache.Entry{Kind: string(kind), Data: data})
	return nil
}

// WriteRaw stores a pre-serialized object payload directly, without
// going through an Object implementation. The pack parser uses this:
// a pack entry's inflated bytes are already in the canonical payload
// form (tree/commit/tag bytes, or blob bytes), so there is no need to
// round-trip them through a typed Object first.
func (s *Storage) WriteRaw(kind ObjectType, data []byte) (ObjectID, error) {
	id := ComputeHash(kind, data)
	if s.HasObject(id) {
		s.cache.Put(objcache.Key(id), objcache.Entry{Kind: string(kind), Data: data})
		return id, nil
	}
	if err := s.writeRaw(id, kind, data); err != nil {
		return ObjectID{}, err
	}
	return id, nil
}

// ReadObject reads and fully parses an object into its typed
// representation.
func (s *Storage) ReadObject(id ObjectID) (Object, error) {
	kind, data, err := s.readRaw(id)
	if err != nil {
		return nil, err
	}

	var obj Object
	switch kind {
	case TypeBlob:
		obj = ParseBlob(id, data)
	case TypeTree:
		obj, err = ParseTree(id, data)
	case TypeCommit:
		obj, err = ParseCommit(id, data)
	case TypeTag:
		obj, err = ParseTag(id, data)
	default:
		return nil, fmt.Errorf("%w: unknown object type %q", ErrCorruptHeader, kind)
	}
	if err != nil {
		return nil, err
	}

	return obj, nil
}

// readRaw returns an object's kind and full decompressed payload,
// consulting the in-memory cache before touching disk.
func (s *Storage) readRaw(id ObjectID) (ObjectType, []byte, error) {
	if e, ok := s.cache.Get(objcache.Key(id)); ok {
		return ObjectType(e.Kind), e.Data, nil
	}

	kind, size, rc, err := s.OpenRaw(id)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorruptZlib, err)
	}
	if int64(len(data)) != size {
		return "", nil, fmt.Errorf("%w: header declared %d bytes, read %d", ErrCorruptHeader, size, len(data))
	}

	s.cache.Put(objcache.Key(id), objcache.Entry{Kind: string(kind), Data: data})
	return kind, data, nil
}

// OpenRaw opens a loose object for streaming, lazy reads: the zlib
// stream is inflated incrementally as the caller reads, rather than
// eagerly materializing the whole payload up front. The returned
// reader yields exactly size bytes of payload (the header is already
// consumed) and must be closed by the caller.
func (s *Storage) OpenRaw(id ObjectID) (ObjectType, int64, io.ReadCloser, error) {
	path := s.objectPath(id)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return "", 0, nil, fmt.Errorf("failed to open object file: %w", err)
	}

	zr, err := zlib.NewReader(f)
	if err != nil {
		f.Close()
		return "", 0, nil, fmt.Errorf("%w: %v", ErrCorruptZlib, err)
	}

	br := bufio.NewReader(zr)
	header, err := br.ReadString('\x00')
	if err != nil {
		zr.Close()
		f.Close()
		return "", 0, nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	header = header[:len(header)-1]

	var kindStr string
	var size int64
	if _, err := fmt.Sscanf(header, "%s %d", &kindStr, &size); err != nil {
		zr.Close()
		f.Close()
		return "", 0, nil, fmt.Errorf("%w: %q", ErrCorruptHeader, header)
	}
	kind := ObjectType(kindStr)
	if !kind.IsValid() {
		zr.Close()
		f.Close()
		return "", 0, nil, fmt.Errorf("%w: unknown type %q", ErrCorruptHeader, kindStr)
	}

	return kind, size, &rawObjectReader{
		limited: io.LimitReader(br, size),
		zr:      zr,
		f:       f,
	}, nil
}

// rawObjectReader closes both the zlib stream and the underlying file
// handle when the caller is done reading.
type rawObjectReader struct {
	limited io.Reader
	zr      io.ReadCloser
	f       *os.File
}

func (r *rawObjectReader) Read(p []byte) (int, error) { return r.limited.Read(p) }

func (r *rawObjectReader) Close() error {
	zerr := r.zr.Close()
	ferr := r.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// HasObject checks if an object exists in storage.
func (s *Storage) HasObject(id ObjectID) bool {
	if _, ok := s.cache.Get(objcache.Key(id)); ok {
		return true
	}

	path := s.objectPath(id)
	if _, err := os.Stat(path); err == nil {
		return true
	}

	return false
}

// PathOf returns the loose-object directory and filename for an id
// (objects/xx/yyyy...), without checking whether it exists.
func (s *Storage) PathOf(id ObjectID) (dir, file string) {
	hex := id.String()
	return filepath.Join(s.basePath, hex[:2]), hex[2:]
}

// objectPath returns the full path to a loose object file.
func (s *Storage) objectPath(id ObjectID) string {
	dir, file := s.PathOf(id)
	return filepath.Join(dir, file)
}

// compressData compresses data using zlib.
func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decompressData decompresses data using zlib.
func decompressData(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptZlib, err)
	}
	defer r.Close()

	return io.ReadAll(r)
}
