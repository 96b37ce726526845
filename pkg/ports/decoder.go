package ports

import (
	"github.com/user/scanline/pkg/scan"
)

// Reader decodes one symbology from a run-length sequence of bar and space
// widths sampled along a scan line. Bit-pattern grammars and checksum rules
// live entirely in Reader implementations.
type Reader interface {
	// Format returns the symbology identifier reported in CodeResult.
	Format() string

	// Decode attempts to read a symbol from the bar-width sequence,
	// returning nil when the sequence does not parse.
	Decode(widths []float64) *scan.CodeResult
}

// Decoder turns candidate regions, or a whole frame, into decode results.
// A nil result means nothing decodable was found, which is not an error.
type Decoder interface {
	// DecodeFromBoundingBoxes scans each candidate box and returns the
	// first decodable symbol with its box attached.
	DecodeFromBoundingBoxes(buf *scan.PixelBuffer, boxes []scan.BoundingBox) *scan.Result

	// DecodeFromImage scans the full frame without prior locating.
	DecodeFromImage(buf *scan.PixelBuffer) *scan.Result

	// SetReaders replaces the set of enabled symbologies. Safe to call
	// while decodes are in flight; in-flight decodes finish with the set
	// they started with.
	SetReaders(formats []string)

	// RegisterReader adds a symbology definition under the given format
	// name and enables it.
	RegisterReader(format string, reader Reader)
}

// DecoderFactory builds an isolated Decoder instance. Every worker slot
// owns its own decoder so slots share no mutable state.
type DecoderFactory func() Decoder
