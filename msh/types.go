// SPDX-License-Identifier: GPL-2.0-or-later

// Package msh holds the decoded model records that the chunk decoders
// produce and downstream exporters consume.
package msh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lod is a model's level of detail, encoded in its name suffix.
type Lod uint8

const (
	LodZero Lod = iota
	LodOne
	LodTwo
	LodLowres
)

func (l Lod) String() string {
	switch l {
	case LodZero:
		return "lod0"
	case LodOne:
		return "lod1"
	case LodTwo:
		return "lod2"
	case LodLowres:
		return "lowres"
	}
	return "unknown"
}

// RenderFlags is the set of render flags a material can carry.
type RenderFlags uint8

const (
	FlagHardedged RenderFlags = 1 << iota
	FlagTransparent
	FlagGlow
	FlagAdditive
	FlagSpecular
	FlagDoublesided
)

// RenderType is the engine render type of a material. The PS2 files store
// these values directly, so the numbering is part of the format.
type RenderType uint32

const (
	TypeNormal RenderType = iota
	TypeBumpmap
	TypeEnvMap
	TypeWireframe
	TypeScrolling
	TypeEnergy
	TypeAnimated
	TypeRefraction
)

// RenderTypeSWBF1 is the first engine generation's material type.
type RenderTypeSWBF1 uint32

const (
	SWBF1TypeNormal RenderTypeSWBF1 = iota
	SWBF1TypeSpecular
	SWBF1TypeGlow
	SWBF1TypeDetail
	SWBF1TypeScroll
	SWBF1TypeReflection
	SWBF1TypeCamouflage
	SWBF1TypeRefraction
	SWBF1TypeBumpmap
	SWBF1TypeBumpmapSpecular
	SWBF1TypeWater
)

// Material is the normalized material descriptor shared by all dialects.
type Material struct {
	Name           string
	Textures       [4]string
	DiffuseColour  mgl32.Vec4
	SpecularColour mgl32.Vec4
	SpecularValue  float32
	Params         [2]uint8
	Flags          RenderFlags
	Type           RenderType
	TypeSWBF1      RenderTypeSWBF1
	VertexLighting bool
	AttachedLight  string
}

// SkinEntry holds the bone influences of one vertex.
type SkinEntry struct {
	Bones   [3]uint8
	Weights mgl32.Vec3
}

// HardSkin returns a single-bone entry with full weight on the first slot.
func HardSkin(bone uint8) SkinEntry {
	return SkinEntry{
		Bones:   [3]uint8{bone, bone, bone},
		Weights: mgl32.Vec3{1, 0, 0},
	}
}

// Model accumulates the decoded geometry of one model segment.
type Model struct {
	Lod            Lod
	Name           string
	Parent         string
	Material       Material
	Strips         [][]uint16
	Positions      []mgl32.Vec3
	Normals        []mgl32.Vec3
	TextureCoords  []mgl32.Vec2
	Colours        []mgl32.Vec4
	Skin           []SkinEntry
	BoneMap        []uint8
	Pretransformed bool
}

// Bbox is an axis aligned bounding box in centre and half extent form.
type Bbox struct {
	Centre   mgl32.Vec3
	HalfSize mgl32.Vec3
}

// BboxFromVertexBox derives a Bbox from a model's min/max vertex box.
func BboxFromVertexBox(min, max mgl32.Vec3) Bbox {
	return Bbox{
		Centre: min.Add(max).Mul(0.5),
		HalfSize: mgl32.Vec3{
			math32.Abs(min[0]-max[0]) / 2,
			math32.Abs(min[1]-max[1]) / 2,
			math32.Abs(min[2]-max[2]) / 2,
		},
	}
}
