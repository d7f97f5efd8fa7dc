// SPDX-License-Identifier: GPL-2.0-or-later

package modl

import (
	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

// Children shared by every platform are recognized by magic; the order of
// children within a segment is not fixed and unknown magics are skipped.

// readMaterialName names both the material and the model itself.
func readMaterialName(mnam *ucfb.Reader, m *msh.Model) error {
	name, err := mnam.ReadString()
	if err != nil {
		return err
	}
	m.Material.Name = name
	m.Name = name
	return nil
}

// readTextureName fills one of the material's four texture slots. Out of
// range slots are ignored.
func readTextureName(tnam *ucfb.Reader, material *msh.Material) error {
	slot, err := tnam.ReadUint32()
	if err != nil {
		return err
	}
	name, err := tnam.ReadString()
	if err != nil {
		return err
	}
	if int(slot) < len(material.Textures) {
		material.Textures[slot] = name
	}
	return nil
}

// readIndexBuffer reads a flat IBUF index list as a single strip.
func readIndexBuffer(ibuf *ucfb.Reader) ([]uint16, error) {
	count, err := ibuf.ReadUint32()
	if err != nil {
		return nil, err
	}
	return ibuf.ReadUint16s(int(count))
}

// readBoneMap reads a BMAP bone index list.
func readBoneMap(bmap *ucfb.Reader) ([]uint8, error) {
	count, err := bmap.ReadUint32()
	if err != nil {
		return nil, err
	}
	raw, err := bmap.ReadBytes(int(count))
	if err != nil {
		return nil, err
	}
	out := make([]uint8, count)
	copy(out, raw)
	return out, nil
}

func processSegmentPC(segment *ucfb.Reader, lod msh.Lod, info modelInfo, builder *msh.Builder) error {
	model := msh.Model{Lod: lod}

	var vbufs []*ucfb.Reader

	for segment.More() {
		child, err := segment.ReadChild()
		if err != nil {
			return err
		}
		switch child.Magic() {
		case magicMTRL:
			err = readMaterial(child, &model.Material)
		case magicRTYP:
			err = readRenderType(child, &model.Material)
		case magicMNAM:
			err = readMaterialName(child, &model)
		case magicTNAM:
			err = readTextureName(child, &model.Material)
		case magicIBUF:
			var strip []uint16
			if strip, err = readIndexBuffer(child); err == nil {
				model.Strips = append(model.Strips, strip)
			}
		case magicVBUF:
			vbufs = append(vbufs, child)
		case magicBNAM:
			model.Parent, err = child.ReadString()
		case magicBMAP:
			model.BoneMap, err = readBoneMap(child)
		}
		if err != nil {
			return err
		}
	}

	if err := readVbufs(vbufs, &model, info.VertexBox); err != nil {
		return err
	}

	builder.AddModel(model)
	return nil
}

func processSegmentXbox(segment *ucfb.Reader, lod msh.Lod, info modelInfo, builder *msh.Builder) error {
	model := msh.Model{Lod: lod}

	for segment.More() {
		child, err := segment.ReadChild()
		if err != nil {
			return err
		}
		switch child.Magic() {
		case magicMTRL:
			err = readMaterial(child, &model.Material)
		case magicRTYP:
			err = readRenderType(child, &model.Material)
		case magicMNAM:
			err = readMaterialName(child, &model)
		case magicTNAM:
			err = readTextureName(child, &model.Material)
		case magicIBUF:
			var strip []uint16
			if strip, err = readIndexBuffer(child); err == nil {
				model.Strips = append(model.Strips, strip)
			}
		case magicVBUF:
			err = readVbufXbox(child, &model, info.VertexBox)
		case magicBNAM:
			model.Parent, err = child.ReadString()
		case magicBMAP:
			model.BoneMap, err = readBoneMap(child)
		}
		if err != nil {
			return err
		}
	}

	builder.AddModel(model)
	return nil
}

func processSegmentPS2(segment *ucfb.Reader, lod msh.Lod, info modelInfo, builder *msh.Builder) error {
	model := msh.Model{Lod: lod}

	// PS2 segments lead with their own INFO carrying the stream counts.
	segInfo, err := segment.ReadChildStrict(magicINFO)
	if err != nil {
		return err
	}
	vertexCount, err := segInfo.ReadUint32()
	if err != nil {
		return err
	}
	indexCount, err := segInfo.ReadUint32()
	if err != nil {
		return err
	}

	for segment.More() {
		child, err := segment.ReadChild()
		if err != nil {
			return err
		}
		switch child.Magic() {
		case magicMTRL:
			err = readMaterial(child, &model.Material)
		case magicRTYP:
			// Stored as a raw render type rather than a tag string.
			var raw uint32
			if raw, err = child.ReadUint32(); err == nil {
				model.Material.Type = msh.RenderType(raw)
			}
		case magicMNAM:
			err = readMaterialName(child, &model)
		case magicTNAM:
			err = readTextureName(child, &model.Material)
		case magicSTRP:
			var strips [][]uint16
			if strips, err = readStripBuffer(child, indexCount); err == nil {
				model.Strips = append(model.Strips, strips...)
			}
		case magicPOSI:
			model.Positions, err = readPositionsBuffer(child, vertexCount, info.VertexBox)
		case magicNORM:
			model.Normals, err = readNormalsBuffer(child, vertexCount)
		case magicTEX0:
			model.TextureCoords, err = readUVBuffer(child, vertexCount)
		case magicCOL0:
			model.Colours, err = readColourBuffer(child, vertexCount)
		case magicBONE:
			model.Skin, err = readSkinBuffer(child, vertexCount)
		case magicBMAP:
			if model.BoneMap, err = readBoneMap(child); err == nil {
				model.Pretransformed = true
			}
		case magicBNAM:
			model.Parent, err = child.ReadString()
		}
		if err != nil {
			return err
		}
	}

	builder.AddModel(model)
	return nil
}
