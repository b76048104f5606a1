package font

import "errors"

// Parse errors. Table parsers wrap these with the table tag, so callers can
// match the condition with errors.Is and still see which table failed.
var (
	// ErrUnexpectedEnd is returned when a read runs past the end of the font data.
	ErrUnexpectedEnd = errors.New("unexpected end of data")

	// ErrOutOfRange is returned when seeking outside the font data.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrMissingTable is returned when a required sfnt table is absent.
	ErrMissingTable = errors.New("missing table")

	// ErrNoUnicodeCmap is returned when the cmap table has no (3,1) or (0,3) subtable.
	ErrNoUnicodeCmap = errors.New("no unicode cmap subtable")

	// ErrUnsupportedCmapFormat is returned for cmap subtable formats other than 4 and 12.
	ErrUnsupportedCmapFormat = errors.New("unsupported cmap subtable format")

	// ErrUnsupportedFontType is returned when neither glyf/loca nor CFF outline data is present.
	ErrUnsupportedFontType = errors.New("unsupported outline format")

	// ErrRecursionLimit is returned when CharString subroutine calls nest too deeply.
	ErrRecursionLimit = errors.New("subroutine recursion limit exceeded")

	// ErrBadFontData is returned for structural violations not covered by a
	// more specific error.
	ErrBadFontData = errors.New("invalid font data")
)
