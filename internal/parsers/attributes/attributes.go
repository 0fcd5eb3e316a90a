// Package attributes decodes attributes B-tree leaf record values, one of
// three sub-kinds: inline data, a fork descriptor for out-of-line data,
// and continuation extents for an already-referenced fork.
//
// Follows libfshfs_attribute_record.c for the exact per-kind byte layout.
package attributes

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/parsers/forks"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

const (
	inlineRecordMinSize  = 16
	forkRecordSize       = 88
	extentsRecordSize    = 72
	forkDescriptorOffset = 8
	extentsStartOffset   = 8
	extentsEndOffset     = 73
)

// Decode reads an attribute record value and dispatches on its record_type
// (the first big-endian u32) to one of the three sub-kinds.
func Decode(value []byte) (*types.AttributeRecord, error) {
	if len(value) < 4 {
		return nil, errs.New(errs.InvalidFormat, "attributes.Decode", fmt.Errorf("attribute record too short"))
	}
	be := binary.BigEndian
	kind := be.Uint32(value[0:4])

	switch kind {
	case types.AttributeKindInline:
		return decodeInline(value, be)
	case types.AttributeKindFork:
		return decodeFork(value, be)
	case types.AttributeKindExtents:
		return decodeExtents(value, be)
	default:
		return nil, errs.New(errs.Unsupported, "attributes.Decode", fmt.Errorf("unsupported attribute record type 0x%x", kind))
	}
}

func decodeInline(value []byte, be binary.ByteOrder) (*types.AttributeRecord, error) {
	if len(value) < inlineRecordMinSize {
		return nil, errs.New(errs.InvalidFormat, "attributes.decodeInline", fmt.Errorf("inline attribute record too short"))
	}
	dataSize := be.Uint32(value[12:16])
	if int(dataSize) > len(value)-inlineRecordMinSize {
		return nil, errs.New(errs.Corruption, "attributes.decodeInline",
			fmt.Errorf("inline_data_size %d overruns record of %d bytes", dataSize, len(value)))
	}
	data := make([]byte, dataSize)
	copy(data, value[16:16+int(dataSize)])
	return &types.AttributeRecord{Kind: types.AttributeKindInline, InlineData: data}, nil
}

func decodeFork(value []byte, be binary.ByteOrder) (*types.AttributeRecord, error) {
	if len(value) < forkRecordSize {
		return nil, errs.New(errs.InvalidFormat, "attributes.decodeFork", fmt.Errorf("fork attribute record too short"))
	}
	fork, err := forks.DecodeHFSPlusFork(value[forkDescriptorOffset:forkRecordSize], be)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "attributes.decodeFork", err)
	}
	return &types.AttributeRecord{Kind: types.AttributeKindFork, Fork: fork}, nil
}

func decodeExtents(value []byte, be binary.ByteOrder) (*types.AttributeRecord, error) {
	if len(value) < extentsRecordSize {
		return nil, errs.New(errs.InvalidFormat, "attributes.decodeExtents", fmt.Errorf("extents attribute record too short"))
	}
	rec := &types.AttributeRecord{Kind: types.AttributeKindExtents}
	offset := extentsStartOffset
	for i := 0; offset < extentsEndOffset && i < len(rec.ContinuationExtents); i++ {
		rec.ContinuationExtents[i] = types.ExtentDescriptor{
			StartBlock: be.Uint32(value[offset : offset+4]),
			BlockCount: be.Uint32(value[offset+4 : offset+8]),
		}
		offset += 8
	}
	return rec, nil
}
