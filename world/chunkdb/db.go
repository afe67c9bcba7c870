// Package chunkdb implements a LevelDB-backed column cache for world
// providers. Columns are zstd-compressed before they hit LevelDB, so the
// database's own compression is disabled. The cache binds itself to a world
// identity on first use and refuses to serve a store built for a different
// world.
package chunkdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/farshore-game/farshore/world"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Config holds the optional parameters of a DB.
type Config struct {
	// Log is the logger corrupt-entry warnings are written to. Defaults to
	// slog.Default().
	Log *slog.Logger
	// BlockSize is the LevelDB block size. Defaults to 16KiB.
	BlockSize int
	// ReadOnly makes StoreColumn a no-op, serving the cache as-is.
	ReadOnly bool
}

// DB is a world.Provider backed by a LevelDB database on disk. It is safe
// for concurrent use.
type DB struct {
	conf Config
	ldb  *leveldb.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// Open creates a new DB reading and writing from/to files under the path
// passed using default options.
func Open(dir string) (*DB, error) {
	var conf Config
	return conf.Open(dir)
}

// Open creates a new DB reading and writing from/to files under the path
// passed. If a DB is not currently present at the path, a new one is created.
func (conf Config) Open(dir string) (*DB, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	conf.Log = conf.Log.With("provider", "chunkdb")
	if conf.BlockSize == 0 {
		conf.BlockSize = 16 * opt.KiB
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("open chunkdb: %w", err)
	}
	ldb, err := leveldb.OpenFile(filepath.Join(dir, "columns"), &opt.Options{
		BlockSize:   conf.BlockSize,
		Compression: opt.NoCompression,
		ReadOnly:    conf.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("open chunkdb: leveldb: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("open chunkdb: zstd writer: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("open chunkdb: zstd reader: %w", err)
	}
	return &DB{conf: conf, ldb: ldb, enc: enc, dec: dec}, nil
}

// keyWorldID stores the identity of the world the cache was built for.
var keyWorldID = []byte("world_id")

// BindWorld associates the store with a world identity. A fresh store adopts
// the identity; an existing store returns an error when it was built for a
// different world, so a stale cache is never served.
func (db *DB) BindWorld(id uuid.UUID) error {
	v, err := db.ldb.Get(keyWorldID, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		if db.conf.ReadOnly {
			return nil
		}
		return db.ldb.Put(keyWorldID, id[:], nil)
	case err != nil:
		return fmt.Errorf("bind world: %w", err)
	}
	if !bytes.Equal(v, id[:]) {
		stored, _ := uuid.FromBytes(v)
		return fmt.Errorf("bind world: store belongs to world %v, not %v", stored, id)
	}
	return nil
}

// LoadColumn returns the cached column at pos. Corrupt entries are logged and
// reported as absent, so the caller falls through to regeneration.
func (db *DB) LoadColumn(pos world.ChunkPos) (*world.ColumnData, bool, error) {
	raw, err := db.ldb.Get(index(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("load column %v: %w", pos, err)
	}
	buf, err := db.dec.DecodeAll(raw, nil)
	if err != nil {
		db.conf.Log.Warn("corrupt column entry, regenerating", "pos", pos, "error", err)
		return nil, false, nil
	}
	data, err := decodeColumn(buf)
	if err != nil {
		db.conf.Log.Warn("corrupt column entry, regenerating", "pos", pos, "error", err)
		return nil, false, nil
	}
	return data, true, nil
}

// StoreColumn caches the column at pos, replacing any previous entry. It is
// a no-op on a read-only store.
func (db *DB) StoreColumn(pos world.ChunkPos, data *world.ColumnData) error {
	if db.conf.ReadOnly {
		return nil
	}
	if err := db.ldb.Put(index(pos), db.enc.EncodeAll(encodeColumn(data), nil), nil); err != nil {
		return fmt.Errorf("store column %v: %w", pos, err)
	}
	return nil
}

// Close closes the database and releases the compressors.
func (db *DB) Close() error {
	db.dec.Close()
	if err := db.enc.Close(); err != nil {
		return fmt.Errorf("close chunkdb: zstd: %w", err)
	}
	if err := db.ldb.Close(); err != nil {
		return fmt.Errorf("close chunkdb: leveldb: %w", err)
	}
	return nil
}

// index returns the database key of a column position.
func index(pos world.ChunkPos) []byte {
	b := make([]byte, 9)
	b[0] = 'c'
	binary.LittleEndian.PutUint32(b[1:], uint32(pos.X()))
	binary.LittleEndian.PutUint32(b[5:], uint32(pos.Z()))
	return b
}

// encodeColumn serialises a column as a little-endian count followed by the
// raw float64 bits of each height.
func encodeColumn(data *world.ColumnData) []byte {
	buf := make([]byte, 4+8*len(data.Heights))
	binary.LittleEndian.PutUint32(buf, uint32(len(data.Heights)))
	for i, h := range data.Heights {
		binary.LittleEndian.PutUint64(buf[4+8*i:], math.Float64bits(h))
	}
	return buf
}

func decodeColumn(buf []byte) (*world.ColumnData, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("column entry truncated: %v bytes", len(buf))
	}
	n := int(binary.LittleEndian.Uint32(buf))
	if len(buf) != 4+8*n {
		return nil, fmt.Errorf("column entry has %v bytes, want %v", len(buf), 4+8*n)
	}
	heights := make([]float64, n)
	for i := range heights {
		heights[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[4+8*i:]))
	}
	return &world.ColumnData{Heights: heights}, nil
}
