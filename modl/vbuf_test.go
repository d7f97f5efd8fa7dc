// SPDX-License-Identifier: GPL-2.0-or-later

package modl

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

func vec3Near(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestVbufStrideMismatch(t *testing.T) {
	// position flag selects 12 bytes, not 16
	payload := le32(1, 16, vbufPosition)
	payload = append(payload, make([]byte, 16)...)
	_, err := decodeVbuf(testReader(t, "VBUF", payload), unitBox(), dialectPC)
	if !errors.Is(err, ErrVbufStride) {
		t.Errorf("want ErrVbufStride got %v", err)
	}
}

func TestDecodeVbufPositions(t *testing.T) {
	payload := le32(2, 12, vbufPosition)
	payload = append(payload, lef32(1, 2, 3)...)
	payload = append(payload, lef32(-1, -2, -3)...)

	contents, err := decodeVbuf(testReader(t, "VBUF", payload), unitBox(), dialectPC)
	if err != nil {
		t.Fatalf("decodeVbuf: %v", err)
	}
	if len(contents.positions) != 2 {
		t.Fatalf("want 2 positions got %d", len(contents.positions))
	}
	if contents.positions[0] != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("position 0: got %v", contents.positions[0])
	}
	if contents.pretransformed {
		t.Error("uncompressed buffer marked pretransformed")
	}
}

func TestDecodeVbufCompressedPositions(t *testing.T) {
	payload := le32(2, 6, vbufPosition|vbufPositionCompressed)
	payload = append(payload, le16(65535, 65535, 65535)...)
	payload = append(payload, le16(0, 0, 0)...)

	box := [2]mgl32.Vec3{{-4, -4, -4}, {4, 4, 4}}
	contents, err := decodeVbuf(testReader(t, "VBUF", payload), box, dialectPC)
	if err != nil {
		t.Fatalf("decodeVbuf: %v", err)
	}
	if !contents.pretransformed {
		t.Error("compressed positions must mark the model pretransformed")
	}
	if !vec3Near(contents.positions[0], mgl32.Vec3{4, 4, 4}, 1e-4) {
		t.Errorf("max quantized position: got %v", contents.positions[0])
	}
	if !vec3Near(contents.positions[1], mgl32.Vec3{-4, -4, -4}, 1e-4) {
		t.Errorf("min quantized position: got %v", contents.positions[1])
	}
}

func TestDecodeVbufInterleaved(t *testing.T) {
	// position + compressed normal + colour + uncompressed texcoords
	flags := uint32(vbufPosition | vbufNormal | vbufNormalCompressed | vbufColour | vbufTexcoords)
	stride := uint32(12 + 3 + 4 + 8)
	payload := le32(1, stride, flags)
	payload = append(payload, lef32(1, 0, 0)...)
	payload = append(payload, byte(127), byte(0), byte(0))
	payload = append(payload, le32(0xff0000ff)...) // BGRA blue
	payload = append(payload, lef32(0.5, 0.25)...)

	contents, err := decodeVbuf(testReader(t, "VBUF", payload), unitBox(), dialectPC)
	if err != nil {
		t.Fatalf("decodeVbuf: %v", err)
	}
	if !vec3Near(contents.normals[0], mgl32.Vec3{1, 0, 0}, 1e-4) {
		t.Errorf("normal: got %v", contents.normals[0])
	}
	if !vec4Near(contents.colours[0], mgl32.Vec4{0, 0, 1, 1}, 0.01) {
		t.Errorf("colour after BGRA swizzle: got %v", contents.colours[0])
	}
	if contents.texcoords[0] != (mgl32.Vec2{0.5, 0.75}) {
		t.Errorf("texcoords: got %v", contents.texcoords[0])
	}
}

func TestDecodeVbufSkin(t *testing.T) {
	flags := uint32(vbufBlendInfo)
	payload := le32(1, 16, flags)
	payload = append(payload, lef32(0.5, 0.25, 0.25)...)
	payload = append(payload, 1, 2, 3, 0)

	contents, err := decodeVbuf(testReader(t, "VBUF", payload), unitBox(), dialectPC)
	if err != nil {
		t.Fatalf("decodeVbuf: %v", err)
	}
	entry := contents.skin[0]
	if entry.Bones != [3]uint8{1, 2, 3} {
		t.Errorf("bones: got %v", entry.Bones)
	}
	if entry.Weights != (mgl32.Vec3{0.5, 0.25, 0.25}) {
		t.Errorf("weights: got %v", entry.Weights)
	}
}

func TestDecodeVbufCompressedSkin(t *testing.T) {
	payload := le32(1, 4, vbufBlendInfo|vbufBlendInfoCompressed)
	payload = append(payload, 9, 0, 0, 0)

	contents, err := decodeVbuf(testReader(t, "VBUF", payload), unitBox(), dialectPC)
	if err != nil {
		t.Fatalf("decodeVbuf: %v", err)
	}
	entry := contents.skin[0]
	if entry.Bones[0] != 9 {
		t.Errorf("bone: got %v", entry.Bones)
	}
	if entry.Weights != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("weights: got %v", entry.Weights)
	}
}

func TestVbufFusion(t *testing.T) {
	posVbuf := le32(1, 12, vbufPosition)
	posVbuf = append(posVbuf, lef32(1, 2, 3)...)

	// carries positions and normals, but loses the position conflict
	// to the buffer already holding them
	bothVbuf := le32(1, 24, vbufPosition|vbufNormal)
	bothVbuf = append(bothVbuf, lef32(9, 9, 9)...)
	bothVbuf = append(bothVbuf, lef32(0, 1, 0)...)

	model := msh.Model{}
	err := readVbufs([]*ucfb.Reader{
		testReader(t, "VBUF", posVbuf),
		testReader(t, "VBUF", bothVbuf),
	}, &model, unitBox())
	if err != nil {
		t.Fatalf("readVbufs: %v", err)
	}
	if model.Positions[0] != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("fused positions: got %v", model.Positions[0])
	}
	if model.Normals[0] != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("fused normals: got %v", model.Normals[0])
	}
}

func TestUnpackDec3N(t *testing.T) {
	cases := []struct {
		packed uint32
		want   mgl32.Vec3
	}{
		{1023, mgl32.Vec3{1, 0, 0}},
		{1023 << 11, mgl32.Vec3{0, 1, 0}},
		{511 << 22, mgl32.Vec3{0, 0, 1}},
	}
	for _, c := range cases {
		got := unpackDec3N(c.packed)
		if !vec3Near(got, c.want, 1e-4) {
			t.Errorf("unpackDec3N(%#x): want %v got %v", c.packed, c.want, got)
		}
	}
	neg := unpackDec3N(0x401) // -1023 in 11 bit two's complement
	if math32.Abs(neg[0]+1) > 1e-3 {
		t.Errorf("negative x: got %v", neg)
	}
}

func TestDecodeVbufXboxNormals(t *testing.T) {
	flags := uint32(vbufNormal | vbufNormalCompressed)
	payload := le32(1, 4, flags)
	payload = append(payload, le32(1023)...)

	contents, err := decodeVbuf(testReader(t, "VBUF", payload), unitBox(), dialectXbox)
	if err != nil {
		t.Fatalf("decodeVbuf: %v", err)
	}
	if !vec3Near(contents.normals[0], mgl32.Vec3{1, 0, 0}, 1e-4) {
		t.Errorf("xbox normal: got %v", contents.normals[0])
	}
}

func TestDecodeUV(t *testing.T) {
	if got := decodeUV(0, 0); got != (mgl32.Vec2{0, 1}) {
		t.Errorf("decodeUV(0,0): got %v", got)
	}
	if got := decodeUV(1024, 1024); got != (mgl32.Vec2{0.5, 0.5}) {
		t.Errorf("decodeUV(1024,1024): got %v", got)
	}
	// V wraps its fractional part before the flip
	if got := decodeUV(0, 2048+1024); got != (mgl32.Vec2{0, 0.5}) {
		t.Errorf("decodeUV(0,3072): got %v", got)
	}
}
