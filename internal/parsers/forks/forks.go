// Package forks decodes the two on-disk shapes a fork's extent information
// takes — the 80-byte HFS+/HFSX fork descriptor, and the three-extent
// record embedded directly in a classic HFS catalog file record — into the
// shared types.ForkDescriptor: a fixed-width struct decode from a byte
// slice via binary.ByteOrder, following fshfs_fork_descriptor.h for field
// order.
package forks

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// HFSPlusDescriptorSize is the on-disk size of one HFS+/HFSX fork
// descriptor.
const HFSPlusDescriptorSize = 80

// DecodeHFSPlusFork decodes a single 80-byte HFS+/HFSX fork descriptor.
//
// Reference: fshfs_fork_descriptor.h (logical_size u64, clump_size u32,
// total_blocks u32, 8x(start_block u32, block_count u32)).
func DecodeHFSPlusFork(buf []byte, be binary.ByteOrder) (types.ForkDescriptor, error) {
	if len(buf) < HFSPlusDescriptorSize {
		return types.ForkDescriptor{}, errs.New(errs.InvalidFormat, "forks.DecodeHFSPlusFork",
			fmt.Errorf("fork descriptor truncated: need %d bytes, have %d", HFSPlusDescriptorSize, len(buf)))
	}
	fd := types.ForkDescriptor{
		LogicalSize: be.Uint64(buf[0:8]),
		ClumpSize:   be.Uint32(buf[8:12]),
		TotalBlocks: be.Uint32(buf[12:16]),
	}
	for i := 0; i < 8; i++ {
		off := 16 + i*8
		fd.Extents[i] = types.ExtentDescriptor{
			StartBlock: be.Uint32(buf[off : off+4]),
			BlockCount: be.Uint32(buf[off+4 : off+8]),
		}
	}
	return fd, nil
}

// DecodeHFSPlusForks decodes n consecutive fork descriptors, used for the
// volume header's five special-file forks.
func DecodeHFSPlusForks(buf []byte, be binary.ByteOrder, n int) ([]types.ForkDescriptor, error) {
	if len(buf) < HFSPlusDescriptorSize*n {
		return nil, errs.New(errs.InvalidFormat, "forks.DecodeHFSPlusForks",
			fmt.Errorf("fork descriptor region truncated: need %d bytes, have %d", HFSPlusDescriptorSize*n, len(buf)))
	}
	out := make([]types.ForkDescriptor, n)
	for i := 0; i < n; i++ {
		fd, err := DecodeHFSPlusFork(buf[i*HFSPlusDescriptorSize:(i+1)*HFSPlusDescriptorSize], be)
		if err != nil {
			return nil, err
		}
		out[i] = fd
	}
	return out, nil
}

// DecodeClassicExtents decodes a classic HFS 3-extent record embedded in a
// catalog file record or MDB fork summary: three (start_block u16,
// block_count u16) pairs.
func DecodeClassicExtents(buf []byte, be binary.ByteOrder) ([3]types.ExtentDescriptor, error) {
	var out [3]types.ExtentDescriptor
	if len(buf) < 12 {
		return out, errs.New(errs.InvalidFormat, "forks.DecodeClassicExtents",
			fmt.Errorf("classic extents record truncated: need 12 bytes, have %d", len(buf)))
	}
	for i := 0; i < 3; i++ {
		off := i * 4
		out[i] = types.ExtentDescriptor{
			StartBlock: uint32(be.Uint16(buf[off : off+2])),
			BlockCount: uint32(be.Uint16(buf[off+2 : off+4])),
		}
	}
	return out, nil
}

// DecodeOverflowExtentsHFSPlus decodes an HFS+/HFSX extents-overflow leaf
// record value: eight consecutive (start_block u32, block_count u32) pairs,
// the same layout as a fork descriptor's extent array with the logical/
// clump/total_blocks header stripped off.
func DecodeOverflowExtentsHFSPlus(buf []byte, be binary.ByteOrder) ([8]types.ExtentDescriptor, error) {
	var out [8]types.ExtentDescriptor
	if len(buf) < 64 {
		return out, errs.New(errs.InvalidFormat, "forks.DecodeOverflowExtentsHFSPlus",
			fmt.Errorf("extents overflow record truncated: need 64 bytes, have %d", len(buf)))
	}
	for i := 0; i < 8; i++ {
		off := i * 8
		out[i] = types.ExtentDescriptor{
			StartBlock: be.Uint32(buf[off : off+4]),
			BlockCount: be.Uint32(buf[off+4 : off+8]),
		}
	}
	return out, nil
}

// AssembleClassicFork builds a types.ForkDescriptor from a classic HFS
// catalog file record's logical/physical size fields and its 3-extent
// record, normalizing it to the same shape DecodeHFSPlusFork produces.
func AssembleClassicFork(logicalSize uint32, extents [3]types.ExtentDescriptor) types.ForkDescriptor {
	fd := types.ForkDescriptor{LogicalSize: uint64(logicalSize)}
	for i, e := range extents {
		fd.Extents[i] = e
	}
	fd.TotalBlocks = fd.BlocksCoveredByInline()
	return fd
}
