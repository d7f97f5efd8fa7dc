// SPDX-License-Identifier: GPL-2.0-or-later

package odf

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/p-rev/swbf-unmunge/saver"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

func chunk(tag string, payload []byte) []byte {
	b := make([]byte, 0, 8+len(payload))
	b = binary.LittleEndian.AppendUint32(b, ucfb.MagicNumber(tag))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func children(chunks ...[]byte) []byte {
	var payload []byte
	for _, c := range chunks {
		payload = append(payload, pad4(c)...)
	}
	return payload
}

func str(s string) []byte { return append([]byte(s), 0) }

func prop(hash uint32, value string) []byte {
	payload := binary.LittleEndian.AppendUint32(nil, hash)
	return chunk("PROP", append(payload, str(value)...))
}

func TestHandleObject(t *testing.T) {
	dir := t.TempDir()
	s := saver.New(dir)

	payload := children(
		chunk("BASE", str("door")),
		chunk("TYPE", str("imp_door")),
		prop(HashFNV("MaxHealth"), "800"),
		prop(geometryNameHash, "imp_door"),
	)
	object, err := ucfb.NewReader(chunk("entc", payload))
	if err != nil {
		t.Fatalf("building object chunk: %v", err)
	}

	if err := HandleObject(object, s, "GameObjectClass"); err != nil {
		t.Fatalf("HandleObject: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "odf", "imp_door.odf"))
	if err != nil {
		t.Fatalf("reading emitted file: %v", err)
	}

	want := "[GameObjectClass]\n\n" +
		"ClassLabel = \"door\"\n" +
		"GeometryName = \"imp_door.msh\"\n" +
		"\n" +
		"[Properties]\n\n" +
		"MaxHealth = \"800\"\n" +
		"GeometryName = \"imp_door\"\n"
	if string(out) != want {
		t.Errorf("emitted odf:\n%q\nwant:\n%q", out, want)
	}
}

func TestHandleObjectNoGeometry(t *testing.T) {
	dir := t.TempDir()
	s := saver.New(dir)

	payload := children(
		chunk("BASE", str("com_item_powerup")),
		chunk("TYPE", str("health")),
	)
	object, err := ucfb.NewReader(chunk("entc", payload))
	if err != nil {
		t.Fatalf("building object chunk: %v", err)
	}
	if err := HandleObject(object, s, "GameObjectClass"); err != nil {
		t.Fatalf("HandleObject: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "odf", "health.odf"))
	if err != nil {
		t.Fatalf("reading emitted file: %v", err)
	}
	want := "[GameObjectClass]\n\n" +
		"ClassLabel = \"com_item_powerup\"\n" +
		"\n" +
		"[Properties]\n\n"
	if string(out) != want {
		t.Errorf("emitted odf:\n%q\nwant:\n%q", out, want)
	}
}

func TestHandleObjectUnknownProperty(t *testing.T) {
	dir := t.TempDir()
	s := saver.New(dir)

	payload := children(
		chunk("BASE", str("x")),
		chunk("TYPE", str("thing")),
		prop(0xdeadbeef, "7"),
	)
	object, err := ucfb.NewReader(chunk("entc", payload))
	if err != nil {
		t.Fatalf("building object chunk: %v", err)
	}
	if err := HandleObject(object, s, "WeaponClass"); err != nil {
		t.Fatalf("HandleObject: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "odf", "thing.odf"))
	if err != nil {
		t.Fatalf("reading emitted file: %v", err)
	}
	if want := "0xdeadbeef = \"7\"\n"; !strings.Contains(string(out), want) {
		t.Errorf("unknown property line missing from:\n%q", out)
	}
}

func TestHandleObjectMissingBase(t *testing.T) {
	object, err := ucfb.NewReader(chunk("entc", children(chunk("TYPE", str("x")))))
	if err != nil {
		t.Fatalf("building object chunk: %v", err)
	}
	err = HandleObject(object, saver.New(t.TempDir()), "GameObjectClass")
	if !errors.Is(err, ucfb.ErrUnexpectedMagic) {
		t.Errorf("want ErrUnexpectedMagic got %v", err)
	}
}
