package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Image is a parsed text memory-image: a sequence of typed writes to be
// applied to simulator memory before execution, plus the declared program
// size used by the pipeline's general termination rule.
type Image struct {
	Records     []ImageRecord
	ProgramSize uint64
	Warnings    []string
}

// ImageRecord is one `<type> <hex-addr> <hex-value>` line of the image.
type ImageRecord struct {
	Type  byte // 'B', 'H', 'W', or 'D'
	Addr  uint64
	Value uint64
}

// widthOf returns the byte width a record type writes.
func widthOf(t byte) uint64 {
	switch t {
	case 'B':
		return 1
	case 'H':
		return 2
	case 'W':
		return 4
	case 'D':
		return 8
	default:
		return 0
	}
}

// LoadImage parses the text memory-image format: one record per line,
// `<type> <hex-addr> <hex-value>`, type one of B/H/W/D (byte/half/word/
// double), plus a `P <size> 0x0` record giving the program size. Blank
// lines are skipped; lines with an unrecognized type are skipped with a
// warning rather than aborting the parse.
func LoadImage(r io.Reader) (*Image, error) {
	img := &Image{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("image line %d: expected 3 fields, got %d: %q", lineNo, len(fields), line)
		}

		typeField := fields[0]
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("image line %d: bad address %q: %w", lineNo, fields[1], err)
		}
		value, err := strconv.ParseUint(strings.TrimPrefix(fields[2], "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("image line %d: bad value %q: %w", lineNo, fields[2], err)
		}

		if typeField == "P" {
			img.ProgramSize = addr
			continue
		}

		if len(typeField) != 1 || widthOf(typeField[0]) == 0 {
			img.Warnings = append(img.Warnings, fmt.Sprintf("image line %d: unknown record type %q, skipped", lineNo, typeField))
			continue
		}

		img.Records = append(img.Records, ImageRecord{Type: typeField[0], Addr: addr, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	return img, nil
}

// MemoryWriter is the subset of *emu.Memory an image needs to install
// itself, kept as an interface so loader does not import emu.
type MemoryWriter interface {
	Write8(addr uint64, value uint8)
	Write16(addr uint64, value uint16)
	Write32(addr uint64, value uint32)
	Write64(addr uint64, value uint64)
}

// Apply writes every record in the image into mem.
func (img *Image) Apply(mem MemoryWriter) {
	for _, rec := range img.Records {
		switch rec.Type {
		case 'B':
			mem.Write8(rec.Addr, uint8(rec.Value))
		case 'H':
			mem.Write16(rec.Addr, uint16(rec.Value))
		case 'W':
			mem.Write32(rec.Addr, uint32(rec.Value))
		case 'D':
			mem.Write64(rec.Addr, rec.Value)
		}
	}
}
