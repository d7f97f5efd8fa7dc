// SPDX-License-Identifier: GPL-2.0-or-later

package modl

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/p-rev/swbf-unmunge/msh"
)

func TestReadVertexStrip(t *testing.T) {
	indices := []uint16{0x8000, 0x8005, 6, 7, 0x8002, 0x8003}
	pos := 0

	strip, err := readVertexStrip(indices, &pos)
	if err != nil {
		t.Fatalf("first strip: %v", err)
	}
	want := []uint16{0, 5, 6, 7}
	if len(strip) != len(want) {
		t.Fatalf("first strip: want %v got %v", want, strip)
	}
	for i := range want {
		if strip[i] != want[i] {
			t.Errorf("first strip[%d]: want %v got %v", i, want[i], strip[i])
		}
	}
	if pos != 4 {
		t.Errorf("cursor: want 4 got %v", pos)
	}

	strip, err = readVertexStrip(indices, &pos)
	if err != nil {
		t.Fatalf("second strip: %v", err)
	}
	if len(strip) != 2 || strip[0] != 2 || strip[1] != 3 {
		t.Errorf("second strip: got %v", strip)
	}
	if pos != len(indices) {
		t.Errorf("cursor: want %v got %v", len(indices), pos)
	}
}

func TestReadVertexStripTruncated(t *testing.T) {
	indices := []uint16{0x8000}
	pos := 0
	if _, err := readVertexStrip(indices, &pos); !errors.Is(err, ErrInvalidIndexBuffer) {
		t.Errorf("want ErrInvalidIndexBuffer got %v", err)
	}
}

func TestReadStripBufferTruncated(t *testing.T) {
	strp := testReader(t, "STRP", le16(0x8000, 0x8001, 2, 0x8003))
	if _, err := readStripBuffer(strp, 4); !errors.Is(err, ErrInvalidIndexBuffer) {
		t.Errorf("want ErrInvalidIndexBuffer got %v", err)
	}
}

func TestReadNormalsBuffer(t *testing.T) {
	norm := testReader(t, "NORM", []byte{127, 0x81, 0, 0, 127, 0})
	normals, err := readNormalsBuffer(norm, 2)
	if err != nil {
		t.Fatalf("readNormalsBuffer: %v", err)
	}
	if !vec3Near(normals[0], mgl32.Vec3{1, -1, 0}, 1e-4) {
		t.Errorf("normal 0: got %v", normals[0])
	}
	if !vec3Near(normals[1], mgl32.Vec3{0, 1, 0}, 1e-4) {
		t.Errorf("normal 1: got %v", normals[1])
	}
}

func TestReadColourBuffer(t *testing.T) {
	col := testReader(t, "COL0", le32(0x7f00007f))
	colours, err := readColourBuffer(col, 1)
	if err != nil {
		t.Fatalf("readColourBuffer: %v", err)
	}
	// snorm bytes (1,0,0,1) decoded BGRA
	if !vec4Near(colours[0], mgl32.Vec4{0, 0, 1, 1}, 0.01) {
		t.Errorf("colour: got %v", colours[0])
	}
}

func TestReadSkinBuffer(t *testing.T) {
	bone := testReader(t, "BONE", []byte{3, 4})
	skin, err := readSkinBuffer(bone, 2)
	if err != nil {
		t.Fatalf("readSkinBuffer: %v", err)
	}
	if skin[0] != msh.HardSkin(3) || skin[1] != msh.HardSkin(4) {
		t.Errorf("skin: got %v", skin)
	}
}

// Scenario: PS2 model with quantized attribute streams.
func TestHandleModelPS2(t *testing.T) {
	posi := le16(
		65535, 65535, 65535,
		65535, 65535, 65535,
		65535, 65535, 65535,
	)
	norm := []byte{127, 127, 127, 127, 127, 127, 127, 127, 127}
	tex0 := le16(0, 0, 0, 0, 0, 0)
	strp := le16(0x8000, 0x8001, 2, 3, 4)

	segm := children(
		chunk("INFO", le32(3, 5)),
		chunk("POSI", posi),
		chunk("NORM", norm),
		chunk("TEX0", tex0),
		chunk("STRP", strp),
	)
	model := children(
		chunk("NAME", append([]byte("Speeder"), 0)),
		chunk("NODE", nil),
		chunk("INFO", infoPayload(unitBox(), 0)),
		chunk("segm", segm),
	)

	builders := msh.NewBuilderMap()
	if err := HandleModelPS2(testReader(t, "modl", model), builders); err != nil {
		t.Fatalf("HandleModelPS2: %v", err)
	}

	models := builders.Get("Speeder").Models()
	if len(models) != 1 {
		t.Fatalf("want 1 model got %d", len(models))
	}
	m := models[0]

	if len(m.Strips) != 1 {
		t.Fatalf("want 1 strip got %d", len(m.Strips))
	}
	wantStrip := []uint16{0, 1, 2, 3, 4}
	for i := range wantStrip {
		if m.Strips[0][i] != wantStrip[i] {
			t.Errorf("strip[%d]: want %v got %v", i, wantStrip[i], m.Strips[0][i])
		}
	}

	if len(m.Positions) != 3 {
		t.Fatalf("want 3 positions got %d", len(m.Positions))
	}
	for i, p := range m.Positions {
		if !vec3Near(p, mgl32.Vec3{1, 1, 1}, 1e-4) {
			t.Errorf("position %d: want vertex box max got %v", i, p)
		}
	}
	for i, n := range m.Normals {
		if !vec3Near(n, mgl32.Vec3{1, 1, 1}, 1e-4) {
			t.Errorf("normal %d: got %v", i, n)
		}
	}
	for i, uv := range m.TextureCoords {
		if uv != (mgl32.Vec2{0, 1}) {
			t.Errorf("uv %d: want (0,1) got %v", i, uv)
		}
	}
	if m.Pretransformed {
		t.Error("no BMAP, model must not be pretransformed")
	}
}

func TestHandleModelPS2Bmap(t *testing.T) {
	segm := children(
		chunk("INFO", le32(0, 0)),
		chunk("BMAP", append(le32(2), 1, 2)),
	)
	model := children(
		chunk("NAME", append([]byte("Rig"), 0)),
		chunk("NODE", nil),
		chunk("INFO", infoPayload(unitBox(), 0)),
		chunk("segm", segm),
	)

	builders := msh.NewBuilderMap()
	if err := HandleModelPS2(testReader(t, "modl", model), builders); err != nil {
		t.Fatalf("HandleModelPS2: %v", err)
	}
	m := builders.Get("Rig").Models()[0]
	if !m.Pretransformed {
		t.Error("BMAP on PS2 implies pretransformed")
	}
	if len(m.BoneMap) != 2 {
		t.Errorf("bone map: got %v", m.BoneMap)
	}
}

func TestHandleModelPS2MissingInfo(t *testing.T) {
	segm := children(chunk("STRP", le16(0x8000, 0x8001)))
	model := children(
		chunk("NAME", append([]byte("Rig"), 0)),
		chunk("NODE", nil),
		chunk("INFO", infoPayload(unitBox(), 0)),
		chunk("segm", segm),
	)
	builders := msh.NewBuilderMap()
	if err := HandleModelPS2(testReader(t, "modl", model), builders); err == nil {
		t.Error("PS2 segment without a leading INFO must fail")
	}
}
