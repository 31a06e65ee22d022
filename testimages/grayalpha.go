package testimages

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"testing"
)

// GrayAlphaPNG returns an 8-bit gray+alpha PNG (color type 4) of a
// horizontal gray ramp. image/png never writes this color type.
func GrayAlphaPNG(tb testing.TB, w, h int) []byte {
	tb.Helper()

	var raw bytes.Buffer
	for y := 0; y < h; y++ {
		raw.WriteByte(0) // no filter
		for x := 0; x < w; x++ {
			raw.WriteByte(byte(x * 255 / max(w-1, 1)))
			raw.WriteByte(0xff)
		}
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		tb.Fatalf("compress gray+alpha rows: %v", err)
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("compress gray+alpha rows: %v", err)
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 4 // gray + alpha

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	writeChunk(&out, "IHDR", ihdr)
	writeChunk(&out, "IDAT", idat.Bytes())
	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

func writeChunk(b *bytes.Buffer, kind string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	b.Write(n[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	b.WriteString(kind)
	b.Write(data)
	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	b.Write(n[:])
}
