package osd

import "github.com/spaolacci/murmur3"

// HashObjectName returns the placement hash of an object name.
func HashObjectName(name string) uint32 {
	return murmur3.Sum32([]byte(name))
}

// PGIDFor maps an object into one of pgNum placement groups of pool.
// pgNum of zero is treated as one.
func PGIDFor(oid ObjectID, pool uint64, pgNum uint32) PGID {
	if pgNum == 0 {
		pgNum = 1
	}
	return PGID{
		Pool:      pool,
		Seed:      stableMod(HashObjectName(oid.Name), pgNum, pgMask(pgNum)),
		Preferred: -1,
	}
}

func pgMask(n uint32) uint32 {
	m := uint32(1)
	for m < n {
		m <<= 1
	}
	return m - 1
}

// stableMod keeps most objects in place when pgNum grows to the next power
// of two.
func stableMod(x, b, bmask uint32) uint32 {
	if x&bmask < b {
		return x & bmask
	}
	return x & (bmask >> 1)
}
