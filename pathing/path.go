// SPDX-License-Identifier: GPL-2.0-or-later

// Package pathing turns munged path chunks back into .pth text files.
package pathing

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/p-rev/swbf-unmunge/saver"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

var (
	magicPath = ucfb.MagicNumber("path")
	magicNAME = ucfb.MagicNumber("NAME")
	magicINFO = ucfb.MagicNumber("INFO")
	magicPNTS = ucfb.MagicNumber("PNTS")
)

var pathFileCount atomic.Int64

type pathNode struct {
	position mgl32.Vec3
	rotation mgl32.Vec4
}

type path struct {
	name  string
	nodes []pathNode
}

// HandlePath emits the .pth file for a path chunk. The chunk's children
// are the individual path entries.
func HandlePath(reader *ucfb.Reader, s *saver.Saver) error {
	var paths []path
	for reader.More() {
		entry, err := reader.ReadChildStrict(magicPath)
		if err != nil {
			return err
		}
		p, err := readPathEntry(entry)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}

	name := strconv.FormatInt(pathFileCount.Add(1)-1, 10)
	return s.Save(renderPaths(paths), "world", name, ".pth")
}

func readPathEntry(entry *ucfb.Reader) (path, error) {
	var p path

	nameChild, err := entry.ReadChildStrict(magicNAME)
	if err != nil {
		return path{}, err
	}
	if p.name, err = nameChild.ReadString(); err != nil {
		return path{}, err
	}

	infoChild, err := entry.ReadChildStrict(magicINFO)
	if err != nil {
		return path{}, err
	}
	info, err := infoChild.ReadBytes(6)
	if err != nil {
		return path{}, err
	}
	nodeCount := binary.LittleEndian.Uint16(info)

	for entry.More() {
		child, err := entry.ReadChild()
		if err != nil {
			return path{}, err
		}
		if child.Magic() != magicPNTS {
			continue
		}
		for i := uint16(0); i < nodeCount; i++ {
			node, err := readPathNode(child)
			if err != nil {
				return path{}, err
			}
			p.nodes = append(p.nodes, node)
		}
	}
	return p, nil
}

// readPathNode reads one node and converts it out of the munged
// coordinate space: Z is mirrored and the rotation swizzled zwxy with the
// second component negated.
func readPathNode(pnts *ucfb.Reader) (pathNode, error) {
	position, err := pnts.ReadVec3()
	if err != nil {
		return pathNode{}, err
	}
	rotation, err := pnts.ReadVec4()
	if err != nil {
		return pathNode{}, err
	}
	position[2] *= -1
	return pathNode{
		position: position,
		rotation: mgl32.Vec4{rotation[2], -rotation[3], rotation[0], rotation[1]},
	}, nil
}

const nodeCommon = `
			Knot(0.000000);
			Data(0);
			Time(1.000000);
			PauseTime(0.000000);

			Properties(0)
			{
			}
		}`

const pathCommon = `	Data(0);
	PathType(0);
	PathSpeedType(0);
	PathTime(0.000000);
	OffsetPath(0);
	SplineType("Hermite");

	Properties(0)
	{
	}

`

func renderPaths(paths []path) []byte {
	var buf strings.Builder

	buf.WriteString("Version(10);\n")
	fmt.Fprintf(&buf, "PathCount(%d);\n\n", len(paths))

	for _, p := range paths {
		renderPath(&buf, p)
	}
	return []byte(buf.String())
}

func renderPath(buf *strings.Builder, p path) {
	fmt.Fprintf(buf, "Path(%q)\n{\n", p.name)
	buf.WriteString(pathCommon)
	fmt.Fprintf(buf, "\tNodes(%d)\n\t{\n", len(p.nodes))

	for _, node := range p.nodes {
		renderNode(buf, node)
	}

	buf.WriteString("\t}\n}\n\n")
}

func renderNode(buf *strings.Builder, node pathNode) {
	buf.WriteString("\t\tNode()\n\t\t{\n")
	fmt.Fprintf(buf, "\t\t\tPosition(%f, %f, %f);\n",
		node.position[0], node.position[1], node.position[2])
	fmt.Fprintf(buf, "\t\t\tRotation(%f, %f, %f, %f);\n",
		node.rotation[0], node.rotation[1], node.rotation[2], node.rotation[3])
	buf.WriteString(nodeCommon)
	buf.WriteString("\n\n")
}
