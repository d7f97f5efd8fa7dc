// SPDX-License-Identifier: GPL-2.0-or-later

package modl

import (
	"encoding/binary"
	gomath "math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	smath "github.com/p-rev/swbf-unmunge/math"
	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

// VBUF flag bits. The low bits select which attributes are interleaved in
// each vertex record, the high bits select the compressed encodings.
const (
	vbufPosition    = 0x00000002
	vbufBlendInfo   = 0x00000004
	vbufNormal      = 0x00000020
	vbufTangents    = 0x00000040
	vbufColour      = 0x00000080
	vbufStaticLight = 0x00000100
	vbufTexcoords   = 0x00001000

	vbufPositionCompressed  = 0x00008000
	vbufBlendInfoCompressed = 0x00010000
	vbufNormalCompressed    = 0x00020000
	vbufTexcoordCompressed  = 0x00040000
)

type vbufDialect uint8

const (
	dialectPC vbufDialect = iota
	dialectXbox
)

// vertexAttrib describes one interleaved attribute: its select bit, the
// bit marking its compressed form, and the record sizes of both forms.
type vertexAttrib struct {
	flag     uint32
	compFlag uint32
	size     int
	compSize int
}

// Attributes appear in vertex records in this order. Sizes:
// positions f32x3 or quantized u16x3; blend info is three f32 weights plus
// three bone indices and a pad byte, or just the indices when compressed;
// normals f32x3, i8x3 on PC, packed 11/11/10 snorm on Xbox; tangents are a
// tangent/bitangent pair of the normal encoding; colours and static
// lighting are packed BGRA words; texcoords f32x2 or i16x2 at 1/2048.
func vertexAttribs(dialect vbufDialect) [7]vertexAttrib {
	attribs := [7]vertexAttrib{
		{vbufPosition, vbufPositionCompressed, 12, 6},
		{vbufBlendInfo, vbufBlendInfoCompressed, 16, 4},
		{vbufNormal, vbufNormalCompressed, 12, 3},
		{vbufTangents, vbufNormalCompressed, 24, 6},
		{vbufColour, 0, 4, 0},
		{vbufStaticLight, 0, 4, 0},
		{vbufTexcoords, vbufTexcoordCompressed, 8, 4},
	}
	if dialect == dialectXbox {
		attribs[2].compSize = 4
		attribs[3].compSize = 8
	}
	return attribs
}

func vbufStride(flags uint32, dialect vbufDialect) int {
	stride := 0
	for _, a := range vertexAttribs(dialect) {
		if flags&a.flag == 0 {
			continue
		}
		if a.compFlag != 0 && flags&a.compFlag != 0 {
			stride += a.compSize
		} else {
			stride += a.size
		}
	}
	return stride
}

// vbufContents holds the parallel sequences decoded from one VBUF.
type vbufContents struct {
	positions      []mgl32.Vec3
	normals        []mgl32.Vec3
	texcoords      []mgl32.Vec2
	colours        []mgl32.Vec4
	skin           []msh.SkinEntry
	pretransformed bool
}

// mergeInto supplies the model's attribute sequences that are still
// missing. When several VBUFs feed one segment the buffer that carries an
// attribute wins over the ones that do not.
func (c *vbufContents) mergeInto(m *msh.Model) {
	if len(m.Positions) == 0 {
		m.Positions = c.positions
	}
	if len(m.Normals) == 0 {
		m.Normals = c.normals
	}
	if len(m.TextureCoords) == 0 {
		m.TextureCoords = c.texcoords
	}
	if len(m.Colours) == 0 {
		m.Colours = c.colours
	}
	if len(m.Skin) == 0 {
		m.Skin = c.skin
	}
	if c.pretransformed {
		m.Pretransformed = true
	}
}

// readVbufs performs the deferred PC fusion over a segment's collected
// vertex buffers.
func readVbufs(vbufs []*ucfb.Reader, m *msh.Model, vertexBox [2]mgl32.Vec3) error {
	for _, vbuf := range vbufs {
		contents, err := decodeVbuf(vbuf, vertexBox, dialectPC)
		if err != nil {
			return err
		}
		contents.mergeInto(m)
	}
	return nil
}

// readVbufXbox processes a single Xbox vertex buffer inline.
func readVbufXbox(vbuf *ucfb.Reader, m *msh.Model, vertexBox [2]mgl32.Vec3) error {
	contents, err := decodeVbuf(vbuf, vertexBox, dialectXbox)
	if err != nil {
		return err
	}
	contents.mergeInto(m)
	return nil
}

func decodeVbuf(vbuf *ucfb.Reader, vertexBox [2]mgl32.Vec3, dialect vbufDialect) (vbufContents, error) {
	count, err := vbuf.ReadUint32()
	if err != nil {
		return vbufContents{}, err
	}
	stride, err := vbuf.ReadUint32()
	if err != nil {
		return vbufContents{}, err
	}
	flags, err := vbuf.ReadUint32()
	if err != nil {
		return vbufContents{}, err
	}

	want := vbufStride(flags, dialect)
	if want != int(stride) {
		return vbufContents{}, errors.Wrapf(ErrVbufStride,
			"VBUF declares stride %d but flags 0x%x select %d bytes", stride, flags, want)
	}

	raw, err := vbuf.ReadBytesUnaligned(int(count) * int(stride))
	if err != nil {
		return vbufContents{}, err
	}

	var out vbufContents
	if flags&vbufPosition != 0 && flags&vbufPositionCompressed != 0 {
		// Quantized geometry is stored in model-final coordinates.
		out.pretransformed = true
	}

	for i := 0; i < int(count); i++ {
		record := raw[i*int(stride):]
		offset := 0

		if flags&vbufPosition != 0 {
			if flags&vbufPositionCompressed != 0 {
				out.positions = append(out.positions, decodePackedPosition(record[offset:], vertexBox))
				offset += 6
			} else {
				out.positions = append(out.positions, readVec3At(record[offset:]))
				offset += 12
			}
		}
		if flags&vbufBlendInfo != 0 {
			if flags&vbufBlendInfoCompressed != 0 {
				out.skin = append(out.skin, msh.SkinEntry{
					Bones:   [3]uint8{record[offset], record[offset+1], record[offset+2]},
					Weights: mgl32.Vec3{1, 0, 0},
				})
				offset += 4
			} else {
				out.skin = append(out.skin, msh.SkinEntry{
					Bones: [3]uint8{record[offset+12], record[offset+13], record[offset+14]},
					Weights: mgl32.Vec3{
						readFloat32At(record[offset:]),
						readFloat32At(record[offset+4:]),
						readFloat32At(record[offset+8:]),
					},
				})
				offset += 16
			}
		}
		if flags&vbufNormal != 0 {
			normal, size := decodeNormal(record[offset:], flags, dialect)
			out.normals = append(out.normals, normal)
			offset += size
		}
		if flags&vbufTangents != 0 {
			// Tangent and bitangent pair, not kept on the model.
			_, size := decodeNormal(record[offset:], flags, dialect)
			offset += 2 * size
		}
		if flags&vbufColour != 0 {
			out.colours = append(out.colours, smath.BGRA(smath.UnpackUnorm4x8(binary.LittleEndian.Uint32(record[offset:]))))
			offset += 4
		}
		if flags&vbufStaticLight != 0 {
			if flags&vbufColour == 0 {
				out.colours = append(out.colours, smath.BGRA(smath.UnpackUnorm4x8(binary.LittleEndian.Uint32(record[offset:]))))
			}
			offset += 4
		}
		if flags&vbufTexcoords != 0 {
			if flags&vbufTexcoordCompressed != 0 {
				out.texcoords = append(out.texcoords, decodeUV(
					int16(binary.LittleEndian.Uint16(record[offset:])),
					int16(binary.LittleEndian.Uint16(record[offset+2:]))))
				offset += 4
			} else {
				// Same V flip as the quantized form, so both share one origin.
				v := readFloat32At(record[offset+4:])
				out.texcoords = append(out.texcoords, mgl32.Vec2{
					readFloat32At(record[offset:]),
					1 - (v - math32.Floor(v)),
				})
				offset += 8
			}
		}
	}
	return out, nil
}

func decodeNormal(record []byte, flags uint32, dialect vbufDialect) (mgl32.Vec3, int) {
	if flags&vbufNormalCompressed == 0 {
		return readVec3At(record), 12
	}
	if dialect == dialectXbox {
		return unpackDec3N(binary.LittleEndian.Uint32(record)), 4
	}
	return mgl32.Vec3{
		smath.Snorm8(int8(record[0])),
		smath.Snorm8(int8(record[1])),
		smath.Snorm8(int8(record[2])),
	}, 3
}

// decodePackedPosition dequantizes a u16 triple onto the model's vertex
// box, component by component.
func decodePackedPosition(record []byte, vertexBox [2]mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for c := 0; c < 3; c++ {
		q := binary.LittleEndian.Uint16(record[2*c:])
		out[c] = smath.RangeConvert(float32(q), 0, 65535, vertexBox[0][c], vertexBox[1][c])
	}
	return out
}

// decodeUV scales a quantized texture coordinate pair and flips V into
// the top-left origin convention, wrapping the fractional part.
func decodeUV(u, v int16) mgl32.Vec2 {
	const factor = 1.0 / 2048.0
	uf := float32(u) * factor
	vf := float32(v) * factor
	return mgl32.Vec2{uf, 1 - (vf - math32.Floor(vf))}
}

// unpackDec3N expands the Xbox packed 11/11/10 signed normal format.
func unpackDec3N(packed uint32) mgl32.Vec3 {
	expand := func(v uint32, bits uint) float32 {
		half := int32(1) << (bits - 1)
		s := int32(v)
		if s >= half {
			s -= half << 1
		}
		return smath.Clamp(-1, float32(s)/float32(half-1), 1)
	}
	return mgl32.Vec3{
		expand(packed&0x7ff, 11),
		expand(packed>>11&0x7ff, 11),
		expand(packed>>22&0x3ff, 10),
	}
}

func readFloat32At(b []byte) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b))
}

func readVec3At(b []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		readFloat32At(b),
		readFloat32At(b[4:]),
		readFloat32At(b[8:]),
	}
}
