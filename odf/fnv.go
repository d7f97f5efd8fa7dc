// SPDX-License-Identifier: GPL-2.0-or-later

package odf

import "fmt"

// The munging pipeline refers to object properties by a case folded
// 32-bit FNV-1a hash of their names. We carry a table of the known names
// so the emitted files use readable keys again.

const (
	fnvOffsetBasis = 2166136261
	fnvPrime       = 16777619
)

// HashFNV hashes a property name the way the pipeline does: FNV-1a over
// the lowercased bytes.
func HashFNV(name string) uint32 {
	hash := uint32(fnvOffsetBasis)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		hash ^= uint32(c)
		hash *= fnvPrime
	}
	return hash
}

// knownProperties are the object class property names seen across the
// stock .odf files. Extend as new ones turn up.
var knownProperties = []string{
	"AimerNodeName",
	"AimerPitchLimits",
	"AimerYawLimits",
	"AimValue",
	"AmmoCount",
	"AnimationName",
	"AttachDynamic",
	"AttachEffect",
	"AttachOdf",
	"AttachToHardPoint",
	"BuildingCollision",
	"ChunkGeometryName",
	"ChunkPhysics",
	"ClassLabel",
	"CollisionScale",
	"DamageRegion",
	"DeathEffect",
	"DestroyedGeometryName",
	"Effect",
	"EnergyBar",
	"ExplosionName",
	"EyePointOffset",
	"FinalExplosion",
	"FireEmptyEffect",
	"FirePointName",
	"FireSound",
	"FlyerBan",
	"FoleyFXGroup",
	"GeometryName",
	"GeometryScale",
	"HealthType",
	"HealthTexture",
	"HurtSound",
	"IconTexture",
	"LightName",
	"Lighting",
	"MapScale",
	"MapTexture",
	"MaxDamage",
	"MaxHealth",
	"MaxShield",
	"MaxSpeed",
	"MaxTurnSpeed",
	"MuzzleFlash",
	"NextAimer",
	"NextCharge",
	"OrdnanceCollision",
	"OrdnanceName",
	"OverheatSound",
	"PilotType",
	"Radius",
	"ReloadSound",
	"ReserveOneForPlayer",
	"RoundDelay",
	"SalvoCount",
	"SalvoDelay",
	"ShotDelay",
	"ShotElevate",
	"SkeletonName",
	"SoldierCollision",
	"TargetableCollision",
	"TerrainCollision",
	"VehicleCollision",
	"VehicleType",
	"WeaponAmmo",
	"WeaponChannel",
	"WeaponName",
	"WeaponSection",
}

var hashLookup = make(map[uint32]string, len(knownProperties))

func init() {
	for _, name := range knownProperties {
		hashLookup[HashFNV(name)] = name
	}
}

// LookupHash resolves a property hash back to its name, falling back to
// the hash itself for names not in the table.
func LookupHash(hash uint32) string {
	if name, ok := hashLookup[hash]; ok {
		return name
	}
	return fmt.Sprintf("0x%08x", hash)
}
