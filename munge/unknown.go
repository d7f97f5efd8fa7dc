package munge

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/p-rev/swbf-unmunge/saver"
	"github.com/p-rev/swbf-unmunge/ucfb"
)

var unknownChunkCount atomic.Int64

// handleUnknown preserves a chunk we cannot decode by wrapping it in its
// own ucfb envelope, so it can be fed back through the pipeline later.
// File names come from a process wide counter.
func handleUnknown(chunk *ucfb.Reader, s *saver.Saver) error {
	payload := chunk.Payload()

	file := make([]byte, 0, 16+len(payload))
	file = binary.LittleEndian.AppendUint32(file, ucfb.Root)
	file = binary.LittleEndian.AppendUint32(file, uint32(8+len(payload)))
	file = binary.LittleEndian.AppendUint32(file, chunk.Magic())
	file = binary.LittleEndian.AppendUint32(file, uint32(len(payload)))
	file = append(file, payload...)

	name := fmt.Sprintf("chunk_%d", unknownChunkCount.Add(1)-1)
	return s.Save(file, "munged", name, ".munged")
}
