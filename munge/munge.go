// SPDX-License-Identifier: GPL-2.0-or-later

// Package munge walks the top level of a munged file and dispatches each
// chunk to its handler. Chunks are independent, so every top level chunk
// is processed on its own goroutine; a chunk that fails to decode is
// logged and skipped, never fatal for the file.
package munge

import (
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/p-rev/swbf-unmunge/modl"
	"github.com/p-rev/swbf-unmunge/msh"
	"github.com/p-rev/swbf-unmunge/odf"
	"github.com/p-rev/swbf-unmunge/pathing"
	"github.com/p-rev/swbf-unmunge/saver"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

// Platform selects the geometry dialect of the input file.
type Platform uint8

const (
	PlatformPC Platform = iota
	PlatformPS2
	PlatformXbox
)

func (p Platform) String() string {
	switch p {
	case PlatformPC:
		return "pc"
	case PlatformPS2:
		return "ps2"
	case PlatformXbox:
		return "xbox"
	}
	return "unknown"
}

// Verbose enables per chunk progress logging.
var Verbose bool

var (
	magicModl = ucfb.MagicNumber("modl")
	magicEntc = ucfb.MagicNumber("entc")
	magicExpc = ucfb.MagicNumber("expc")
	magicOrdc = ucfb.MagicNumber("ordc")
	magicWpnc = ucfb.MagicNumber("wpnc")
	magicPath = ucfb.MagicNumber("path")
)

// HandleUcfb processes a complete munged file. Decoded models land in
// builders; everything else is written through s.
func HandleUcfb(data []byte, platform Platform, s *saver.Saver, builders *msh.BuilderMap) error {
	root, err := ucfb.NewReader(data)
	if err != nil {
		return err
	}
	if root.Magic() != ucfb.Root {
		return errors.Wrapf(ucfb.ErrUnexpectedMagic, "file starts with %s, not ucfb",
			ucfb.MagicString(root.Magic()))
	}

	var wg sync.WaitGroup
	for root.More() {
		child, err := root.ReadChild()
		if err != nil {
			// The sibling walk is broken, nothing further can be located.
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(chunk *ucfb.Reader) {
			defer wg.Done()
			if err := handleChunk(chunk, platform, s, builders); err != nil {
				log.Printf("skipping %s chunk: %v", ucfb.MagicString(chunk.Magic()), err)
			}
		}(child)
	}
	wg.Wait()
	return nil
}

func handleChunk(chunk *ucfb.Reader, platform Platform, s *saver.Saver, builders *msh.BuilderMap) error {
	if Verbose {
		log.Printf("processing %s chunk of %d bytes", ucfb.MagicString(chunk.Magic()), chunk.Size())
	}
	switch chunk.Magic() {
	case magicModl:
		switch platform {
		case PlatformPS2:
			return modl.HandleModelPS2(chunk, builders)
		case PlatformXbox:
			return modl.HandleModelXbox(chunk, builders)
		default:
			return modl.HandleModel(chunk, builders)
		}
	case magicEntc:
		return odf.HandleObject(chunk, s, "GameObjectClass")
	case magicExpc:
		return odf.HandleObject(chunk, s, "ExplosionClass")
	case magicOrdc:
		return odf.HandleObject(chunk, s, "OrdnanceClass")
	case magicWpnc:
		return odf.HandleObject(chunk, s, "WeaponClass")
	case magicPath:
		return pathing.HandlePath(chunk, s)
	}
	return handleUnknown(chunk, s)
}
