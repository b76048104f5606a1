package fontsvg

import (
	"compress/gzip"
	"fmt"
	"io"
)

// SVGOptions control the SVG document writer.
type SVGOptions struct {
	Fill        string // path fill, "currentColor" when empty
	Class       string // optional class attribute on the path element
	Compression int    // gzip level, 0 writes plain SVG
}

// DefaultSVGOptions are used when no options are passed.
var DefaultSVGOptions = SVGOptions{
	Fill: "currentColor",
}

// WriteSVG writes a standalone SVG document containing a single path element.
func WriteSVG(w io.Writer, p *Path, viewBox Bounds, opts *SVGOptions) error {
	if opts == nil {
		defaultOptions := DefaultSVGOptions
		opts = &defaultOptions
	}
	fill := opts.Fill
	if fill == "" {
		fill = DefaultSVGOptions.Fill
	}

	if opts.Compression != 0 {
		compression := opts.Compression
		if compression < gzip.HuffmanOnly || gzip.BestCompression < compression {
			compression = -1
		}
		gz, _ := gzip.NewWriterLevel(w, compression)
		w = gz
	}

	_, err := fmt.Fprintf(w, `<svg version="1.1" width="%v" height="%v" viewBox="%v %v %v %v" xmlns="http://www.w3.org/2000/svg">`,
		num(viewBox.W()), num(viewBox.H()),
		num(viewBox.MinX), num(viewBox.MinY), num(viewBox.W()), num(viewBox.H()))
	if err == nil && !p.Empty() {
		_, err = fmt.Fprintf(w, `<path d="%s" fill="%s"`, p.String(), fill)
		if err == nil && opts.Class != "" {
			_, err = fmt.Fprintf(w, ` class="%s"`, opts.Class)
		}
		if err == nil {
			_, err = fmt.Fprintf(w, `/>`)
		}
	}
	if err == nil {
		_, err = fmt.Fprintf(w, `</svg>`)
	}
	if gz, ok := w.(*gzip.Writer); ok {
		if cerr := gz.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// WriteSVG writes the layout as a standalone SVG document.
func (l *TextLayout) WriteSVG(w io.Writer, opts *SVGOptions) error {
	return WriteSVG(w, l.Path, l.ViewBox, opts)
}
