// SPDX-License-Identifier: GPL-2.0-or-later

// Package odf turns munged object class chunks back into .odf text files.
package odf

import (
	"fmt"
	"strings"

	"github.com/p-rev/swbf-unmunge/saver"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

var (
	magicBASE = ucfb.MagicNumber("BASE")
	magicTYPE = ucfb.MagicNumber("TYPE")
	magicPROP = ucfb.MagicNumber("PROP")
)

// geometryNameHash is the property hash the engine uses for a class's
// geometry reference.
const geometryNameHash = 0x47c86b4a

type property struct {
	hash  uint32
	value string
}

// HandleObject emits the .odf file for one object class chunk. typeName
// labels the class kind the chunk magic implied (GameObjectClass and so
// on).
func HandleObject(object *ucfb.Reader, s *saver.Saver, typeName string) error {
	var buf strings.Builder

	writeBracketed(&buf, typeName)

	base, err := object.ReadChildStrict(magicBASE)
	if err != nil {
		return err
	}
	classLabel, err := base.ReadString()
	if err != nil {
		return err
	}
	writeProperty(&buf, "ClassLabel", classLabel)

	typeChild, err := object.ReadChildStrict(magicTYPE)
	if err != nil {
		return err
	}
	odfName, err := typeChild.ReadString()
	if err != nil {
		return err
	}

	properties, err := readProperties(object)
	if err != nil {
		return err
	}

	for _, prop := range properties {
		if prop.hash == geometryNameHash {
			writeProperty(&buf, "GeometryName", prop.value+".msh")
			break
		}
	}

	buf.WriteByte('\n')
	writeBracketed(&buf, "Properties")

	for _, prop := range properties {
		writeProperty(&buf, LookupHash(prop.hash), prop.value)
	}

	return s.Save([]byte(buf.String()), "odf", odfName, ".odf")
}

func readProperties(object *ucfb.Reader) ([]property, error) {
	var properties []property
	for object.More() {
		prop, err := object.ReadChildStrict(magicPROP)
		if err != nil {
			return nil, err
		}
		hash, err := prop.ReadUint32()
		if err != nil {
			return nil, err
		}
		value, err := prop.ReadString()
		if err != nil {
			return nil, err
		}
		properties = append(properties, property{hash: hash, value: value})
	}
	return properties, nil
}

func writeBracketed(buf *strings.Builder, what string) {
	fmt.Fprintf(buf, "[%s]\n\n", what)
}

func writeProperty(buf *strings.Builder, name, value string) {
	fmt.Fprintf(buf, "%s = \"%s\"\n", name, value)
}
