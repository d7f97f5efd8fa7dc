// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// UnpackUnorm4x8 maps the four bytes of packed, low to high, onto [0, 1].
func UnpackUnorm4x8(packed uint32) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(packed&0xff) / 255,
		float32(packed>>8&0xff) / 255,
		float32(packed>>16&0xff) / 255,
		float32(packed>>24&0xff) / 255,
	}
}

// PackUnorm4x8 is the inverse of UnpackUnorm4x8.
func PackUnorm4x8(v mgl32.Vec4) uint32 {
	var packed uint32
	for i := 3; i >= 0; i-- {
		b := math32.Round(Clamp(0, v[i], 1) * 255)
		packed = packed<<8 | uint32(b)
	}
	return packed
}

// UnpackSnorm4x8 maps the four bytes of packed, taken as signed, onto
// [-1, 1].
func UnpackSnorm4x8(packed uint32) mgl32.Vec4 {
	return mgl32.Vec4{
		Clamp(-1, float32(int8(packed))/127, 1),
		Clamp(-1, float32(int8(packed>>8))/127, 1),
		Clamp(-1, float32(int8(packed>>16))/127, 1),
		Clamp(-1, float32(int8(packed>>24))/127, 1),
	}
}

// PackSnorm4x8 is the inverse of UnpackSnorm4x8.
func PackSnorm4x8(v mgl32.Vec4) uint32 {
	var packed uint32
	for i := 3; i >= 0; i-- {
		b := int8(math32.Round(Clamp(-1, v[i], 1) * 127))
		packed = packed<<8 | uint32(uint8(b))
	}
	return packed
}

// BGRA swizzles a vector decoded in BGRA byte order into RGBA.
func BGRA(v mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{v[2], v[1], v[0], v[3]}
}

// Snorm8 maps a signed byte onto [-1, 1].
func Snorm8(v int8) float32 {
	return Clamp(-1, float32(v)/127, 1)
}
