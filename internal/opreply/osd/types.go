package osd

import "fmt"

// ObjectID names an object within its pool.
type ObjectID struct {
	Name string `json:"name"`
}

func (o ObjectID) String() string {
	return o.Name
}

// PGID identifies the placement group that owns an object.
type PGID struct {
	Pool      uint64 `json:"pool"`
	Seed      uint32 `json:"seed"`
	Preferred int32  `json:"preferred"`
}

// PGIDStructVersion is the struct version byte written ahead of a wide PGID.
const PGIDStructVersion uint8 = 1

// LegacyPGID is the packed 64-bit placement group id understood by peers
// without wide placement group support.
// Layout (low to high): [preferred (2)][seed (2)][pool (4)]
type LegacyPGID uint64

// Legacy returns the narrow form of the id. Pool and seed are truncated to
// 32 and 16 bits respectively.
func (p PGID) Legacy() LegacyPGID {
	v := uint64(uint16(int16(p.Preferred))) //nolint:gosec
	v |= uint64(uint16(p.Seed)) << 16       //nolint:gosec
	v |= uint64(uint32(p.Pool)) << 32       //nolint:gosec
	return LegacyPGID(v)
}

// FitsLegacy reports whether the id survives conversion to the narrow form.
func (p PGID) FitsLegacy() bool {
	return p.Pool <= 0xffffffff && p.Seed <= 0xffff && p.Preferred >= -0x8000 && p.Preferred <= 0x7fff
}

// PGIDFromLegacy widens a narrow placement group id.
func PGIDFromLegacy(v LegacyPGID) PGID {
	return PGID{
		Preferred: int32(int16(uint16(v))), //nolint:gosec
		Seed:      uint32(uint16(v >> 16)), //nolint:gosec
		Pool:      uint64(uint32(v >> 32)), //nolint:gosec
	}
}

func (p PGID) String() string {
	if p.Preferred >= 0 {
		return fmt.Sprintf("%d.%xp%d", p.Pool, p.Seed, p.Preferred)
	}
	return fmt.Sprintf("%d.%x", p.Pool, p.Seed)
}

// EVersion is an (epoch, version) pair ordering updates within a placement group.
type EVersion struct {
	Epoch   uint32 `json:"epoch"`
	Version uint64 `json:"version"`
}

// WithVersion returns a copy of e whose ordinal component is replaced by v.
func (e EVersion) WithVersion(v uint64) EVersion {
	e.Version = v
	return e
}

// IsZero reports whether both components are unset.
func (e EVersion) IsZero() bool {
	return e.Epoch == 0 && e.Version == 0
}

func (e EVersion) String() string {
	return fmt.Sprintf("%d'%d", e.Epoch, e.Version)
}
