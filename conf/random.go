package conf

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonwraymond/confkit/store"
)

// normalizeRandom turns a random marker into a fresh concrete value. Every
// lookup draws again; bind the key to a RefValue or copy the result if a
// stable value is needed.
func normalizeRandom(r store.Rand) store.Value {
	switch r {
	case store.RandU8:
		return store.Int(int64(rand.Uint32() & math.MaxUint8))
	case store.RandU16:
		return store.Int(int64(rand.Uint32() & math.MaxUint16))
	case store.RandU32:
		return store.Int(int64(rand.Uint32()))
	case store.RandU64:
		// Preserved exactly by carrying full-range values as decimal text.
		return store.String(strconv.FormatUint(rand.Uint64(), 10))
	case store.RandI8:
		return store.Int(int64(int8(rand.Uint32())))
	case store.RandI16:
		return store.Int(int64(int16(rand.Uint32())))
	case store.RandI32:
		return store.Int(int64(int32(rand.Uint32())))
	case store.RandI64:
		return store.Int(int64(rand.Uint64()))
	case store.RandUUID:
		return store.String(uuid.NewString())
	default:
		return store.String("")
	}
}
