// SPDX-License-Identifier: GPL-2.0-or-later

// Package modl decodes munged model chunks into msh records. The outer
// envelope is shared by every platform; the vertex and index encodings
// inside a segment differ between PC, Xbox and PS2, so the driver is
// parameterized on a segment processor.
package modl

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

var (
	ErrUnknownModelInfo   = errors.New("unknown model info")
	ErrInvalidIndexBuffer = errors.New("invalid index buffer")
	ErrVbufStride         = errors.New("vertex buffer stride mismatch")
)

var (
	magicNAME = ucfb.MagicNumber("NAME")
	magicVRTX = ucfb.MagicNumber("VRTX")
	magicNODE = ucfb.MagicNumber("NODE")
	magicINFO = ucfb.MagicNumber("INFO")
	magicSegm = ucfb.MagicNumber("segm")
	magicMTRL = ucfb.MagicNumber("MTRL")
	magicRTYP = ucfb.MagicNumber("RTYP")
	magicMNAM = ucfb.MagicNumber("MNAM")
	magicTNAM = ucfb.MagicNumber("TNAM")
	magicBNAM = ucfb.MagicNumber("BNAM")
	magicBMAP = ucfb.MagicNumber("BMAP")
	magicIBUF = ucfb.MagicNumber("IBUF")
	magicVBUF = ucfb.MagicNumber("VBUF")
	magicSTRP = ucfb.MagicNumber("STRP")
	magicPOSI = ucfb.MagicNumber("POSI")
	magicNORM = ucfb.MagicNumber("NORM")
	magicTEX0 = ucfb.MagicNumber("TEX0")
	magicCOL0 = ucfb.MagicNumber("COL0")
	magicBONE = ucfb.MagicNumber("BONE")
)

type modelInfo struct {
	VertexBox     [2]mgl32.Vec3
	VisibilityBox [2]mgl32.Vec3
	FaceCount     uint32
}

type segmentProcessor func(segment *ucfb.Reader, lod msh.Lod, info modelInfo, builder *msh.Builder) error

// HandleModel decodes a PC model chunk into the builder map.
func HandleModel(model *ucfb.Reader, builders *msh.BuilderMap) error {
	return handleModel(processSegmentPC, model, builders)
}

// HandleModelXbox decodes an Xbox model chunk into the builder map.
func HandleModelXbox(model *ucfb.Reader, builders *msh.BuilderMap) error {
	return handleModel(processSegmentXbox, model, builders)
}

// HandleModelPS2 decodes a PS2 model chunk into the builder map.
func HandleModelPS2(model *ucfb.Reader, builders *msh.BuilderMap) error {
	return handleModel(processSegmentPS2, model, builders)
}

func handleModel(proc segmentProcessor, model *ucfb.Reader, builders *msh.BuilderMap) error {
	nameChild, err := model.ReadChildStrict(magicNAME)
	if err != nil {
		return err
	}
	name, lod, err := readModelName(nameChild)
	if err != nil {
		return err
	}

	// VRTX shows up on some platforms, its payload is never interpreted.
	model.ReadChildStrictOptional(magicVRTX)

	if _, err := model.ReadChildStrict(magicNODE); err != nil {
		return err
	}
	infoChild, err := model.ReadChildStrict(magicINFO)
	if err != nil {
		return err
	}
	info, err := readModelInfo(infoChild)
	if err != nil {
		return err
	}

	builder := builders.Get(name)
	builder.SetBbox(msh.BboxFromVertexBox(info.VertexBox[0], info.VertexBox[1]))

	for model.More() {
		child, err := model.ReadChild()
		if err != nil {
			return err
		}
		if child.Magic() != magicSegm {
			continue
		}
		if err := proc(child, lod, info, builder); err != nil {
			return err
		}
	}
	return nil
}

// readModelName splits a model name into its base name and the level of
// detail its suffix denotes. Suffix stripping is an unconditional four
// character truncation when one of the known suffixes matches.
func readModelName(name *ucfb.Reader) (string, msh.Lod, error) {
	full, err := name.ReadString()
	if err != nil {
		return "", msh.LodZero, err
	}
	if len(full) < 4 {
		return full, msh.LodZero, nil
	}
	base := full[:len(full)-4]
	switch full[len(full)-4:] {
	case "LOD1":
		return base, msh.LodOne, nil
	case "LOD2":
		return base, msh.LodTwo, nil
	case "LOWD":
		return base, msh.LodLowres, nil
	}
	return full, msh.LodZero, nil
}

// readModelInfo decodes the model INFO chunk. The second engine generation
// leads with four ints where the first had three; every other size is
// unknown.
func readModelInfo(info *ucfb.Reader) (modelInfo, error) {
	switch info.Size() {
	case 72:
		if err := info.Consume(16); err != nil {
			return modelInfo{}, err
		}
	case 68:
		if err := info.Consume(12); err != nil {
			return modelInfo{}, err
		}
	default:
		return modelInfo{}, errors.Wrapf(ErrUnknownModelInfo, "INFO chunk of %d bytes", info.Size())
	}

	var out modelInfo
	var err error
	for i := range out.VertexBox {
		if out.VertexBox[i], err = info.ReadVec3(); err != nil {
			return modelInfo{}, err
		}
	}
	for i := range out.VisibilityBox {
		if out.VisibilityBox[i], err = info.ReadVec3(); err != nil {
			return modelInfo{}, err
		}
	}
	if err = info.Consume(4); err != nil {
		return modelInfo{}, err
	}
	if out.FaceCount, err = info.ReadUint32(); err != nil {
		return modelInfo{}, err
	}
	return out, nil
}
