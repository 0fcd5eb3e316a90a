// Package extents resolves a fork's (fork_descriptor, identifier,
// fork_type, logical_offset, length) into an ordered list of physical byte
// ranges, walking the fork's eight inline extents and then, if the fork
// overflows them, the extents overflow B-tree.
//
// A key/value extent record feeding a logical-to-physical resolver, keyed
// by the fork's (identifier, fork type, starting block) rather than by
// logical address alone.
package extents

import (
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// ByteRange is a contiguous run of bytes at an absolute offset from the
// start of the volume (or, for a sub-range source, from that view's base).
type ByteRange struct {
	Offset int64
	Length int64
}

// OverflowSource looks up the extents overflow record that continues a
// fork's allocation past its eight inline extents. The caller supplies the
// block number one past the last inline (or previously returned) extent as
// startBlock; a miss means the fork's allocation ends there.
//
// Concrete implementations live in internal/services, where the extents
// B-tree is wired up alongside the catalog B-tree.
type OverflowSource interface {
	Lookup(identifier types.CatalogNodeID, forkType uint8, startBlock uint32) ([]types.ExtentDescriptor, bool, error)
}

// Resolve converts a fork descriptor into an ordered list of physical byte
// ranges covering its entire allocation. overflow may be nil only if the
// fork is known not to overflow its inline extents (the five volume
// special-file forks, for instance). blockSize is the allocation block
// size in bytes; volumeOffset is the byte source's absolute offset of
// allocation block 0 (block 0 of the volume, not of the header);
// extentsStartBlock is added to every block number for classic HFS
// volumes (zero on HFS+/HFSX).
func Resolve(
	fork types.ForkDescriptor,
	identifier types.CatalogNodeID,
	forkType uint8,
	blockSize uint32,
	volumeOffset int64,
	extentsStartBlock uint32,
	overflow OverflowSource,
) ([]ByteRange, error) {
	var ranges []ByteRange
	var blocksSeen uint32

	appendExtent := func(e types.ExtentDescriptor) {
		if e.BlockCount == 0 {
			return
		}
		start := e.StartBlock + extentsStartBlock
		ranges = append(ranges, ByteRange{
			Offset: volumeOffset + int64(start)*int64(blockSize),
			Length: int64(e.BlockCount) * int64(blockSize),
		})
		blocksSeen += e.BlockCount
	}

	var lastBlock uint32
	for _, e := range fork.Extents {
		if e.IsEmpty() {
			break
		}
		appendExtent(e)
		lastBlock = e.StartBlock + e.BlockCount
	}

	if blocksSeen >= fork.TotalBlocks {
		return ranges, nil
	}

	if overflow == nil {
		return nil, errs.New(errs.Corruption, "extents.Resolve",
			fmt.Errorf("fork for identifier %d needs extents overflow but none is available", identifier))
	}

	for blocksSeen < fork.TotalBlocks {
		more, found, err := overflow.Lookup(identifier, forkType, lastBlock)
		if err != nil {
			return nil, errs.New(errs.IoError, "extents.Resolve", err)
		}
		if !found {
			return nil, errs.New(errs.Corruption, "extents.Resolve",
				fmt.Errorf("extents overflow lookup miss for identifier %d fork %d at block %d (unexpected hole)",
					identifier, forkType, lastBlock))
		}
		progressed := false
		for _, e := range more {
			if e.IsEmpty() {
				break
			}
			appendExtent(e)
			lastBlock = e.StartBlock + e.BlockCount
			progressed = true
		}
		if !progressed {
			return nil, errs.New(errs.Corruption, "extents.Resolve",
				fmt.Errorf("extents overflow record for identifier %d at block %d carried no extents", identifier, lastBlock))
		}
	}
	return ranges, nil
}

// RangeForSpan restricts a resolved byte-range list to the span
// [logicalOffset, logicalOffset+length) of the fork's logical byte stream,
// returning the physical byte ranges (and their offsets within each) that
// cover it. Used by the fork stream reader to service a single Read/Seek
// without re-walking extents on every call.
func RangeForSpan(ranges []ByteRange, logicalOffset, length int64) ([]ByteRange, error) {
	if logicalOffset < 0 || length < 0 {
		return nil, errs.New(errs.Argument, "extents.RangeForSpan",
			fmt.Errorf("negative offset or length"))
	}
	var out []ByteRange
	var consumed int64
	remaining := length
	for _, r := range ranges {
		if remaining <= 0 {
			break
		}
		rangeEnd := consumed + r.Length
		if rangeEnd <= logicalOffset {
			consumed = rangeEnd
			continue
		}
		skip := int64(0)
		if consumed < logicalOffset {
			skip = logicalOffset - consumed
		}
		available := r.Length - skip
		take := available
		if take > remaining {
			take = remaining
		}
		if take > 0 {
			out = append(out, ByteRange{Offset: r.Offset + skip, Length: take})
			remaining -= take
		}
		consumed = rangeEnd
	}
	if remaining > 0 {
		return nil, errs.New(errs.OutOfRange, "extents.RangeForSpan",
			fmt.Errorf("span [%d,%d) extends %d bytes past the fork's resolved allocation", logicalOffset, logicalOffset+length, remaining))
	}
	return out, nil
}
