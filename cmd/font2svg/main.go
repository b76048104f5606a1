package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/tdewolff/argp"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	fontsvg "github.com/arthurcloche/font-to-svg"
	"github.com/arthurcloche/font-to-svg/font"
)

type SVGOptions struct {
	Args        []string `index:"*" desc:"Font file"`
	Text        string   `short:"t" desc:"Text to lay out"`
	Char        string   `short:"c" desc:"Single Unicode character"`
	Size        float64  `default:"32" desc:"Point size"`
	Kerning     float64  `desc:"Advance adjustment factor in [-1,1]"`
	Fill        string   `default:"currentColor" desc:"Path fill color"`
	Wght        float64  `desc:"Weight axis value for variable fonts"`
	Wdth        float64  `desc:"Width axis value for variable fonts"`
	Compression int      `desc:"Gzip compression level, 0 for plain SVG"`
	Output      string   `short:"o" desc:"Output filename, - for stdout"`
}

type ShowOptions struct {
	Args    []string `index:"*" desc:"Font file"`
	GlyphID uint16   `short:"g" desc:"Glyph ID"`
	Char    string   `short:"c" desc:"Unicode character"`
	PPEM    uint16   `default:"40" desc:"Pixels per em-square"`
	Ratio   float64  `default:"2" desc:"Terminal character width/height ratio"`
	Wght    float64  `desc:"Weight axis value for variable fonts"`
	Wdth    float64  `desc:"Width axis value for variable fonts"`
}

type InfoOptions struct {
	Args   []string `index:"*" desc:"Font file"`
	Tables bool     `desc:"Print the table directory"`
}

var (
	svgOptions  SVGOptions
	showOptions ShowOptions
	infoOptions InfoOptions
)

func (o *SVGOptions) Run() error  { return svg(o.Args) }
func (o *ShowOptions) Run() error { return show(o.Args) }
func (o *InfoOptions) Run() error { return info(o.Args) }

func main() {
	root := argp.New("Convert TTF and OTF glyph outlines to SVG paths")
	root.AddCmd(&svgOptions, "svg", "Render text or a single glyph to an SVG document")
	root.AddCmd(&showOptions, "show", "Preview a glyph in the terminal")
	root.AddCmd(&infoOptions, "info", "Print font info")
	root.Parse()
	root.PrintHelp()
}

func loadFont(args []string, wght, wdth float64) (*fontsvg.Font, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("must pass one font file")
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	f, err := fontsvg.LoadFont(b)
	if err != nil {
		return nil, err
	}
	for _, warning := range f.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	axisValues := map[string]float64{}
	if wght != 0.0 {
		axisValues["wght"] = wght
	}
	if wdth != 0.0 {
		axisValues["wdth"] = wdth
	}
	if 0 < len(axisValues) {
		f.SetAxisValues(axisValues)
	}
	return f, nil
}

func singleRune(s string) (rune, error) {
	rs := []rune(s)
	if len(rs) != 1 {
		return 0, fmt.Errorf("char must be one Unicode character")
	}
	return rs[0], nil
}

func svg(args []string) error {
	f, err := loadFont(args, svgOptions.Wght, svgOptions.Wdth)
	if err != nil {
		return err
	}

	text := svgOptions.Text
	if svgOptions.Char != "" {
		r, err := singleRune(svgOptions.Char)
		if err != nil {
			return err
		}
		text = string(r)
	}
	if text == "" {
		return fmt.Errorf("must pass text or char")
	}

	layout := f.LayoutText(text, &fontsvg.TextOptions{
		Size:    svgOptions.Size,
		Kerning: svgOptions.Kerning,
	})

	w := os.Stdout
	if svgOptions.Output != "" && svgOptions.Output != "-" {
		w, err = os.Create(svgOptions.Output)
		if err != nil {
			return err
		}
		defer w.Close()
	}
	return layout.WriteSVG(w, &fontsvg.SVGOptions{
		Fill:        svgOptions.Fill,
		Compression: svgOptions.Compression,
	})
}

func show(args []string) error {
	f, err := loadFont(args, showOptions.Wght, showOptions.Wdth)
	if err != nil {
		return err
	}

	glyphID := showOptions.GlyphID
	if showOptions.Char != "" {
		r, err := singleRune(showOptions.Char)
		if err != nil {
			return err
		}
		glyphID = f.GlyphIndex(r)
	}

	scale := float64(showOptions.PPEM) / f.UnitsPerEm()
	ascender, descender := f.VerticalMetrics()
	advance := f.Metrics(glyphID).Advance
	width := int(scale*advance + 0.5)
	height := int(scale*(ascender-descender) + 0.5)
	if width <= 0 {
		width = int(scale*f.UnitsPerEm() + 0.5)
	}
	if 160 < width {
		return fmt.Errorf("width cannot exceed 160 for terminal output")
	}

	p, err := f.GlyphPath(glyphID, &fontsvg.PathOptions{
		Scale:   scale,
		FlipY:   true,
		OffsetY: scale * ascender,
	})
	if err != nil {
		return err
	}

	ras := vector.NewRasterizer(width, height)
	p.Iterate(func(cmd fontsvg.PathCmd, d []float64) {
		switch cmd {
		case fontsvg.MoveToCmd:
			ras.MoveTo(float32(d[0]), float32(d[1]))
		case fontsvg.LineToCmd:
			ras.LineTo(float32(d[0]), float32(d[1]))
		case fontsvg.QuadToCmd:
			ras.QuadTo(float32(d[0]), float32(d[1]), float32(d[2]), float32(d[3]))
		case fontsvg.CubeToCmd:
			ras.CubeTo(float32(d[0]), float32(d[1]), float32(d[2]), float32(d[3]), float32(d[4]), float32(d[5]))
		case fontsvg.CloseCmd:
			ras.ClosePath()
		}
	})

	rect := image.Rect(0, 0, width, height)
	img := image.NewRGBA(rect)
	draw.Draw(img, rect, image.NewUniform(color.White), image.Point{}, draw.Over)
	ras.Draw(img, rect, image.NewUniform(color.Black), image.Point{})

	if showOptions.Ratio != 1.0 && 0.0 < showOptions.Ratio {
		origImg := img
		origRect := rect
		rect = image.Rect(0, 0, int(float64(origRect.Max.X)*showOptions.Ratio+0.5), origRect.Max.Y)
		img = image.NewRGBA(rect)
		draw.ApproxBiLinear.Scale(img, rect, origImg, origRect, draw.Over, nil)
	}
	printASCII(img)
	return nil
}

func printASCII(img image.Image) {
	palette := []byte("$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. ")

	size := img.Bounds().Max
	for j := 0; j < size.Y; j++ {
		for i := 0; i < size.X; i++ {
			r, g, b, _ := img.At(i, j).RGBA()
			y, _, _ := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			idx := int(float64(y)/255.0*float64(len(palette)-1) + 0.5)
			fmt.Print(string(palette[idx]))
		}
		fmt.Print("\n")
	}
}

func info(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("must pass one font file")
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	sfnt, err := font.Parse(b)
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n\n", args[0])
	flavor := "TrueType"
	if sfnt.IsCFF {
		flavor = "CFF"
	}
	fmt.Printf("sfntVersion: %q (%s)\n", sfnt.Version, flavor)
	fmt.Printf("unitsPerEm: %d\n", sfnt.Head.UnitsPerEm)
	fmt.Printf("numGlyphs: %d\n", sfnt.NumGlyphs)
	fmt.Printf("mapped characters: %d\n", len(sfnt.Cmap))

	if sfnt.Fvar != nil {
		fmt.Printf("\nVariation axes:\n")
		for _, axis := range sfnt.Fvar.Axes {
			fmt.Printf("  %s  min=%g  default=%g  max=%g\n", axis.Tag, axis.Min, axis.Def, axis.Max)
		}
	}

	if infoOptions.Tables {
		nLen := int(math.Log10(float64(len(sfnt.Data))) + 1)
		fmt.Printf("\nTable directory:\n")
		r := font.NewBinaryReader(sfnt.Data)
		_ = r.ReadBytes(4)
		numTables := int(r.ReadUint16())
		_ = r.ReadBytes(6)
		for i := 0; i < numTables; i++ {
			tag := r.ReadString(4)
			checksum := r.ReadUint32()
			offset := r.ReadUint32()
			length := r.ReadUint32()
			fmt.Printf("  %2d  %s  checksum=0x%08X  offset=%*d  length=%*d\n", i, tag, checksum, nLen, offset, nLen, length)
		}
	}

	for _, warning := range sfnt.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	return nil
}
