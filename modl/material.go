// SPDX-License-Identifier: GPL-2.0-or-later

package modl

import (
	"encoding/binary"

	smath "github.com/p-rev/swbf-unmunge/math"
	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

// Material flag words are sparse bit sets, modelled as untyped masks so
// arbitrary file contents survive the round trip.
const (
	matHardedged      = 0x2
	matTransparent    = 0x4
	matGlow           = 0x10
	matBumpmap        = 0x20
	matAdditive       = 0x40
	matSpecular       = 0x80
	matEnvMap         = 0x100
	matVertexLighting = 0x200
	matWireframe      = 0x800 // name taken from the msh flags, may mean something else here
	matDoublesided    = 0x10000
	matScrolling      = 0x1000000
	matEnergy         = 0x2000000
	matAnimated       = 0x4000000
	matAttachedLight  = 0x8000000
)

// First generation flags. specular is the composite of two bits.
const (
	mat1Hardedged   = 0x2
	mat1Transparent = 0x4
	mat1Specular    = 0x30
	mat1Additive    = 0x80
	mat1Glow        = 0x100
	mat1Detail      = 0x200
	mat1Scroll      = 0x400
	mat1Reflection  = 0x1000
	mat1Camouflage  = 0x2000
	mat1Refraction  = 0x4000
)

// materialInfoSize is the fixed record the second engine generation
// writes. First generation chunks vary in size and are always smaller.
const materialInfoSize = 24

// readMaterial decodes an MTRL chunk into out. The dialect is detected
// from the chunk size.
func readMaterial(material *ucfb.Reader, out *msh.Material) error {
	if material.Size() < materialInfoSize {
		return readMaterialSWBF1(material, out)
	}

	info, err := material.ReadBytes(materialInfoSize)
	if err != nil {
		return err
	}
	flags := binary.LittleEndian.Uint32(info[0:])
	out.DiffuseColour = smath.UnpackUnorm4x8(binary.LittleEndian.Uint32(info[4:]))
	out.SpecularColour = smath.UnpackUnorm4x8(binary.LittleEndian.Uint32(info[8:]))
	out.SpecularValue = float32(binary.LittleEndian.Uint32(info[12:]))
	out.Params[0] = uint8(binary.LittleEndian.Uint32(info[16:]))
	out.Params[1] = uint8(binary.LittleEndian.Uint32(info[20:]))

	// The attached-light name trails the record even when the flag is
	// unset, in which case its meaning is unknown.
	attachedLight, err := material.ReadStringUnaligned()
	if err != nil {
		return err
	}

	out.VertexLighting = flags&matVertexLighting != 0

	if flags&matHardedged != 0 {
		out.Flags |= msh.FlagHardedged
	}
	if flags&matTransparent != 0 && flags&matDoublesided == 0 {
		out.Flags |= msh.FlagTransparent
	}
	if flags&matGlow != 0 {
		out.Flags |= msh.FlagGlow
	}
	if flags&matBumpmap != 0 {
		out.Type = msh.TypeBumpmap
	}
	if flags&matAdditive != 0 {
		out.Flags |= msh.FlagAdditive
	}
	if flags&matSpecular != 0 {
		out.Flags |= msh.FlagSpecular
	}
	if flags&matEnvMap != 0 {
		out.Type = msh.TypeEnvMap
	}
	if flags&matWireframe != 0 {
		out.Type = msh.TypeWireframe
	}
	if flags&matDoublesided != 0 {
		out.Flags |= msh.FlagDoublesided
	}
	if flags&matScrolling != 0 {
		out.Type = msh.TypeScrolling
	}
	if flags&matEnergy != 0 {
		out.Type = msh.TypeEnergy
	}
	if flags&matAnimated != 0 {
		out.Type = msh.TypeAnimated
	}
	if flags&matAttachedLight != 0 {
		out.AttachedLight = attachedLight
	}
	return nil
}

// readMaterialSWBF1 decodes the first generation dialect: a flag word
// followed by trailing fields keyed off the flags, in a fixed order. A
// later type match overwrites an earlier one.
func readMaterialSWBF1(material *ucfb.Reader, out *msh.Material) error {
	if material.Size() == 0 {
		return nil
	}
	flags, err := material.ReadUint32()
	if err != nil {
		return err
	}

	if flags&mat1Hardedged != 0 {
		out.Flags |= msh.FlagHardedged
	}
	if flags&mat1Transparent != 0 {
		out.Flags |= msh.FlagTransparent
	}
	if flags&mat1Specular == mat1Specular {
		out.TypeSWBF1 = msh.SWBF1TypeSpecular
		value, err := material.ReadInt32()
		if err != nil {
			return err
		}
		colour, err := material.ReadUint32()
		if err != nil {
			return err
		}
		out.SpecularValue = float32(value)
		out.SpecularColour = smath.UnpackUnorm4x8(colour)
	}
	if flags&mat1Additive != 0 {
		out.Flags |= msh.FlagAdditive
	}
	if flags&mat1Glow != 0 {
		out.TypeSWBF1 = msh.SWBF1TypeGlow
	}
	if flags&mat1Detail != 0 {
		out.TypeSWBF1 = msh.SWBF1TypeDetail
		if err := readMaterialParams(material, out); err != nil {
			return err
		}
	}
	if flags&mat1Scroll != 0 {
		out.TypeSWBF1 = msh.SWBF1TypeScroll
		if err := readMaterialParams(material, out); err != nil {
			return err
		}
	}
	if flags&mat1Reflection != 0 {
		out.TypeSWBF1 = msh.SWBF1TypeReflection
	}
	if flags&mat1Camouflage != 0 {
		out.TypeSWBF1 = msh.SWBF1TypeCamouflage
	}
	if flags&mat1Refraction != 0 {
		out.TypeSWBF1 = msh.SWBF1TypeRefraction
	}
	return nil
}

// readMaterialParams reads the two float params of detail and scroll
// materials, remapped from [-1, 1] onto a signed byte range.
func readMaterialParams(material *ucfb.Reader, out *msh.Material) error {
	for i := range out.Params {
		v, err := material.ReadFloat32()
		if err != nil {
			return err
		}
		out.Params[i] = uint8(int8(smath.RangeConvert(v, -1, 1, -128, 127)))
	}
	return nil
}

// readRenderType decodes the textual RTYP chunk used on PC and Xbox. The
// PS2 files store a raw render type instead, handled in the PS2 segment
// processor.
func readRenderType(renderType *ucfb.Reader, out *msh.Material) error {
	tag, err := renderType.ReadString()
	if err != nil {
		return err
	}
	switch tag {
	case "Refraction":
		out.Type = msh.TypeRefraction
	case "Bump":
		if out.TypeSWBF1 == msh.SWBF1TypeSpecular {
			out.TypeSWBF1 = msh.SWBF1TypeBumpmapSpecular
		} else {
			out.TypeSWBF1 = msh.SWBF1TypeBumpmap
		}
	case "Water":
		out.TypeSWBF1 = msh.SWBF1TypeWater
	}
	return nil
}
