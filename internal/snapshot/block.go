package snapshot

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Snapshot block format:
//
//	[method_byte (1)] [compressed_size_with_header (4 LE)] [uncompressed_size (4 LE)] [payload...]
//
// compressed_size_with_header includes the 9-byte header itself.
const HeaderSize = 9

// CompressBlock compresses data and returns the full block (header + payload).
// When the codec does not shrink the payload (tiny or incompressible
// snapshots) the block is written with the None method so the payload bytes
// always match the method byte.
func CompressBlock(codec Codec, data []byte) ([]byte, error) {
	compressed, err := codec.Compress(data)
	if err != nil {
		return nil, err
	}
	if len(compressed) >= len(data) && codec.MethodByte() != MethodNone {
		codec = &NoneCodec{}
		compressed, err = codec.Compress(data)
		if err != nil {
			return nil, err
		}
	}

	totalSize := HeaderSize + len(compressed)
	block := make([]byte, totalSize)

	block[0] = codec.MethodByte()
	binary.LittleEndian.PutUint32(block[1:5], uint32(totalSize))
	binary.LittleEndian.PutUint32(block[5:9], uint32(len(data)))
	copy(block[HeaderSize:], compressed)

	return block, nil
}

// DecompressBlock validates the header and decompresses the payload, picking
// the codec from the method byte.
func DecompressBlock(data []byte) ([]byte, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("snapshot block too small: %d bytes", len(data))
	}

	methodByte := data[0]
	compressedSizeWithHeader := binary.LittleEndian.Uint32(data[1:5])
	uncompressedSize := binary.LittleEndian.Uint32(data[5:9])

	if int(compressedSizeWithHeader) > len(data) {
		return nil, fmt.Errorf("snapshot block size mismatch: header says %d, have %d",
			compressedSizeWithHeader, len(data))
	}

	payload := data[HeaderSize:compressedSizeWithHeader]

	var codec Codec
	switch methodByte {
	case MethodLZ4:
		codec = &LZ4Codec{}
	case MethodNone:
		codec = &NoneCodec{}
	default:
		return nil, fmt.Errorf("unknown snapshot compression method: 0x%02x", methodByte)
	}

	return codec.Decompress(payload, int(uncompressedSize))
}

// WriteFile writes data to path as an LZ4 snapshot block, via a temp file
// and rename so readers never observe a torn snapshot.
func WriteFile(path string, data []byte) error {
	block, err := CompressBlock(&LZ4Codec{}, data)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, block, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile reads and decompresses a snapshot file written by WriteFile.
func ReadFile(path string) ([]byte, error) {
	block, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecompressBlock(block)
}
