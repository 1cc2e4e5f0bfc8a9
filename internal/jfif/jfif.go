// Package jfif reads and writes the pixel density stored in the JFIF APP0
// segment of a JPEG stream.
package jfif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type Unit byte

const (
	NoUnit Unit = iota
	DotsPerInch
	DotsPerCentimeter
)

var (
	ErrNotJPEG = errors.New("jfif: missing JPEG start of image marker")
	ErrNoJFIF  = errors.New("jfif: no JFIF APP0 segment")
)

const (
	markerPrefix = 0xff
	soi          = 0xd8
	app0         = 0xe0

	// SOI + APP0 marker + length + "JFIF\x00" + version + unit + densities + thumbnail size
	headerLength  = 2 + 2 + 2 + 5 + 2 + 1 + 4 + 2
	segmentLength = headerLength - 4
)

var identifier = []byte("JFIF\x00")

// Density is the resolution recorded in a JFIF header.
type Density struct {
	Unit Unit
	X    uint16
	Y    uint16
}

func (d Density) String() string {
	switch d.Unit {
	case DotsPerInch:
		return fmt.Sprintf("%dx%d dpi", d.X, d.Y)
	case DotsPerCentimeter:
		return fmt.Sprintf("%dx%d dpcm", d.X, d.Y)
	default:
		return fmt.Sprintf("%d:%d aspect", d.X, d.Y)
	}
}

// SetDensity returns data with its JFIF density set to d. The APP0 segment
// directly after SOI is rewritten in place, or inserted when the stream has none.
func SetDensity(data []byte, d Density) ([]byte, error) {
	if len(data) < 2 || data[0] != markerPrefix || data[1] != soi {
		return nil, ErrNotJPEG
	}

	if hasJFIF(data) {
		out := bytes.Clone(data)
		putDensity(out[13:], d)
		return out, nil
	}

	segment := make([]byte, headerLength-2)
	segment[0] = markerPrefix
	segment[1] = app0
	binary.BigEndian.PutUint16(segment[2:], segmentLength)
	copy(segment[4:], identifier)
	segment[9], segment[10] = 1, 2
	putDensity(segment[11:], d)

	out := make([]byte, 0, len(data)+len(segment))
	out = append(out, data[:2]...)
	out = append(out, segment...)
	return append(out, data[2:]...), nil
}

// ReadDensity reads the JFIF density from the start of a JPEG stream.
func ReadDensity(r io.Reader) (Density, error) {
	header := make([]byte, headerLength)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Density{}, err
	}
	header = header[:n]

	if len(header) < 2 || header[0] != markerPrefix || header[1] != soi {
		return Density{}, ErrNotJPEG
	}
	if !hasJFIF(header) {
		return Density{}, ErrNoJFIF
	}
	return Density{
		Unit: Unit(header[13]),
		X:    binary.BigEndian.Uint16(header[14:]),
		Y:    binary.BigEndian.Uint16(header[16:]),
	}, nil
}

func hasJFIF(data []byte) bool {
	return len(data) >= headerLength &&
		data[2] == markerPrefix && data[3] == app0 &&
		binary.BigEndian.Uint16(data[4:]) >= segmentLength &&
		bytes.Equal(data[6:11], identifier)
}

// putDensity writes unit and densities at b, which starts at the unit byte.
func putDensity(b []byte, d Density) {
	b[0] = byte(d.Unit)
	binary.BigEndian.PutUint16(b[1:], d.X)
	binary.BigEndian.PutUint16(b[3:], d.Y)
}
