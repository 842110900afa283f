package boltstore

import (
	"encoding/binary"

	"github.com/crystal-mush/softcode/pkg/gamedb"
)

// Bucket names.
var (
	bucketMeta     = []byte("meta")
	bucketObjects  = []byte("objects")
	bucketAttrDefs = []byte("attrdefs")
	bucketPlayers  = []byte("players")
	bucketUFuncs   = []byte("ufuncs")
)

var allBuckets = [][]byte{bucketMeta, bucketObjects, bucketAttrDefs, bucketPlayers, bucketUFuncs}

// Meta keys.
var (
	keyVersion  = []byte("version")
	keyNextAttr = []byte("nextattr")
	keyGod      = []byte("god")
)

// refToKey converts a DBRef to an 8-byte big-endian key.
// The offset keeps negative refs (Nothing, Ambiguous) sorted below #0.
func refToKey(ref gamedb.DBRef) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(ref)+1<<32))
	return buf
}

func keyToRef(b []byte) gamedb.DBRef {
	v := binary.BigEndian.Uint64(b)
	return gamedb.DBRef(int64(v) - 1<<32)
}

func intToKey(n int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

func keyToInt(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
