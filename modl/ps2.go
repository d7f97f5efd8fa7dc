// SPDX-License-Identifier: GPL-2.0-or-later

package modl

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	smath "github.com/p-rev/swbf-unmunge/math"
	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

// The PS2 files store vertex attributes in separate sibling chunks rather
// than interleaved buffers. Counts come from the segment's INFO prefix.

// readPositionsBuffer dequantizes a POSI chunk against the model's vertex
// box.
func readPositionsBuffer(positions *ucfb.Reader, vertexCount uint32, vertexBox [2]mgl32.Vec3) ([]mgl32.Vec3, error) {
	raw, err := positions.ReadBytes(6 * int(vertexCount))
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, 0, vertexCount)
	for i := 0; i < int(vertexCount); i++ {
		out = append(out, decodePackedPosition(raw[6*i:], vertexBox))
	}
	return out, nil
}

// readNormalsBuffer expands a NORM chunk of signed byte triples.
func readNormalsBuffer(normals *ucfb.Reader, vertexCount uint32) ([]mgl32.Vec3, error) {
	raw, err := normals.ReadBytes(3 * int(vertexCount))
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, 0, vertexCount)
	for i := 0; i < int(vertexCount); i++ {
		out = append(out, mgl32.Vec3{
			float32(int8(raw[3*i])) / 127,
			float32(int8(raw[3*i+1])) / 127,
			float32(int8(raw[3*i+2])) / 127,
		})
	}
	return out, nil
}

// readUVBuffer expands a TEX0 chunk of quantized coordinate pairs.
func readUVBuffer(uv *ucfb.Reader, vertexCount uint32) ([]mgl32.Vec2, error) {
	raw, err := uv.ReadBytes(4 * int(vertexCount))
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec2, 0, vertexCount)
	for i := 0; i < int(vertexCount); i++ {
		out = append(out, decodeUV(
			int16(binary.LittleEndian.Uint16(raw[4*i:])),
			int16(binary.LittleEndian.Uint16(raw[4*i+2:]))))
	}
	return out, nil
}

// readColourBuffer expands a COL0 chunk of packed vertex colours.
func readColourBuffer(colours *ucfb.Reader, vertexCount uint32) ([]mgl32.Vec4, error) {
	packed, err := colours.ReadUint32s(int(vertexCount))
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec4, 0, vertexCount)
	for _, p := range packed {
		out = append(out, smath.BGRA(smath.UnpackSnorm4x8(p)))
	}
	return out, nil
}

// readSkinBuffer expands a BONE chunk of per-vertex hard skin bones.
func readSkinBuffer(bones *ucfb.Reader, vertexCount uint32) ([]msh.SkinEntry, error) {
	raw, err := bones.ReadBytes(int(vertexCount))
	if err != nil {
		return nil, err
	}
	out := make([]msh.SkinEntry, 0, vertexCount)
	for _, bone := range raw {
		out = append(out, msh.HardSkin(bone))
	}
	return out, nil
}

// readStripBuffer splits an STRP chunk into its triangle strips. Strips
// are concatenated, each opened by a two index header carrying the strip
// start marker in the top bit.
func readStripBuffer(strips *ucfb.Reader, indexCount uint32) ([][]uint16, error) {
	indices, err := strips.ReadUint16s(int(indexCount))
	if err != nil {
		return nil, err
	}
	var out [][]uint16
	pos := 0
	for pos < len(indices) {
		strip, err := readVertexStrip(indices, &pos)
		if err != nil {
			return nil, err
		}
		out = append(out, strip)
	}
	return out, nil
}

// readVertexStrip decodes one strip at *pos, leaving *pos at the next
// strip's first marker index or at the end of the buffer.
func readVertexStrip(indices []uint16, pos *int) ([]uint16, error) {
	if *pos+1 >= len(indices) {
		return nil, errors.Wrapf(ErrInvalidIndexBuffer, "strip header at index %d of %d", *pos, len(indices))
	}

	strip := make([]uint16, 0, 32)
	strip = append(strip, indices[*pos]&0x7fff, indices[*pos+1]&0x7fff)
	*pos += 2

	for ; *pos < len(indices); *pos++ {
		if indices[*pos]&0x8000 != 0 {
			break
		}
		strip = append(strip, indices[*pos])
	}
	return strip, nil
}
