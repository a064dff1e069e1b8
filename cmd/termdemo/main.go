// Command termdemo renders a sample terminal screen to a PNG file with the
// software renderer.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font/basicfont"

	"github.com/gogpu/termcell"
	"github.com/gogpu/termcell/atlas"
	"github.com/gogpu/termcell/blit"
	"github.com/gogpu/termcell/render"
)

func main() {
	var (
		cols     = flag.Int("cols", 60, "terminal columns")
		rows     = flag.Int("rows", 16, "terminal rows")
		output   = flag.String("output", "termdemo.png", "output file")
		workers  = flag.Int("workers", 0, "render workers (0 = GOMAXPROCS)")
		cursor   = flag.String("cursor", "block", "cursor style: block, underscore, bold-underscore, bar, bold-bar, rtl-bar, rtl-bold-bar")
		ticks    = flag.Int("ticks", 0, "blink ticks to advance before saving")
		verbose  = flag.Bool("v", false, "debug logging")
		shaders  = flag.Bool("check-shaders", false, "compile the GPU shaders with naga and exit")
		imageOff = flag.Bool("no-image", false, "skip the overlay image")
		fitName  = flag.String("fit", "center", "overlay image fit: fill, start, center, end, horizontal-*, vertical-*")
		window   = flag.String("window", "", "present into a WxH surface with a margin instead of saving the frame as is")
		pick     = flag.String("pick", "", "report the cell under pixel X,Y")
	)
	flag.Parse()

	if *verbose {
		termcell.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *shaders {
		if err := checkShaders(); err != nil {
			log.Fatalf("Shader check failed: %v", err)
		}
		return
	}

	style, err := termcell.ParseCursorStyle(*cursor)
	if err != nil {
		log.Fatalf("Invalid cursor style: %v", err)
	}
	fit, err := blit.ParseFit(*fitName)
	if err != nil {
		log.Fatalf("Invalid fit: %v", err)
	}

	rast := atlas.NewFaceRasterizer(basicfont.Face7x13)
	cellW, cellH := rast.CellSize()

	glyphs, err := atlas.New(512, 256)
	if err != nil {
		log.Fatalf("Failed to create atlas: %v", err)
	}

	screen := newScreen(*cols, *rows)
	drawSample(screen)

	blinker := termcell.NewBlinker(termcell.DefaultBlinkConfig())
	colors := termcell.DefaultColorTable()
	packer := &termcell.CellPacker{
		Colors:        &colors,
		Metrics:       rast.LineMetrics(),
		ResetFg:       termcell.TermRGB(0xcd, 0xd6, 0xf4),
		ResetBg:       termcell.TermRGB(0x1e, 0x1e, 0x2e),
		CursorStyle:   style,
		CursorVisible: true,
		Blink:         blinker,
	}

	cells, err := screen.layout(glyphs, rast, cellW, cellH)
	if err != nil {
		log.Fatalf("Failed to lay out screen: %v", err)
	}

	w, h := *cols*cellW, *rows*cellH
	r, err := render.NewRenderer(w, h,
		render.WithWorkers(*workers),
		render.WithBandHeight(cellH),
		render.WithClearColor(termcell.Hex("#1e1e2e")),
	)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	frame := &render.Frame{Atlas: glyphs.Binding()}
	if !*imageOff {
		overlay, err := gradientImage()
		if err != nil {
			log.Fatalf("Failed to create image: %v", err)
		}
		frame.Images = []render.Image{{
			Texture: overlay,
			Dst:     image.Rect(w-18*cellW, cellH, w-cellW, 9*cellH),
			Clip:    image.Rect(0, 2*cellH, w, 8*cellH),
			Fit:     fit,
		}}
	}

	if frame.Cells, err = packer.PackAll(cells); err != nil {
		log.Fatalf("Failed to pack cells: %v", err)
	}
	if err := r.Render(frame); err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	// Blink ticks redraw only the rows holding blinking cells or the cursor.
	for range *ticks {
		if !blinker.Tick(termcell.BlinkCursor | termcell.BlinkText) {
			continue
		}
		if frame.Cells, err = packer.PackAll(cells); err != nil {
			log.Fatalf("Failed to pack cells: %v", err)
		}
		for i, c := range cells {
			if c.Cursor || c.Attrs.Has(termcell.AttrSlowBlink) || c.Attrs.Has(termcell.AttrRapidBlink) {
				r.InvalidateCell(&frame.Cells[i])
			}
		}
		if err := r.RenderDirty(frame); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
	}

	if *pick != "" {
		p, err := parsePair(*pick, ",")
		if err != nil {
			log.Fatalf("Invalid pick: %v", err)
		}
		c := termcell.PosToCell(p, cellW, cellH)
		log.Printf("Pixel %v is in column %d, row %d\n", p, c.X, c.Y)
	}

	if *window != "" {
		size, err := parsePair(*window, "x")
		if err != nil {
			log.Fatalf("Invalid window: %v", err)
		}
		surface := image.NewNRGBA(image.Rectangle{Max: size})
		render.Present(surface, r.Target(), termcell.Hex("#11111b"), render.PresentAspect)
		if err := savePNG(*output, surface); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
	} else if err := r.Target().SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Demo saved to %s (%dx%d, %d cells, %d glyphs)\n", *output, w, h, len(cells), glyphs.Len())
}

// gradientImage builds a small translucent gradient texture.
func gradientImage() (*atlas.Image, error) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			src.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 4),
				G: uint8(y * 4),
				B: 0xc0,
				A: 0x70,
			})
		}
	}
	img, err := atlas.FromImage(src)
	if err != nil {
		return nil, err
	}
	img.SetFilter(atlas.FilterBilinear)
	return img, nil
}

// parsePair parses "A<sep>B" into a point.
func parsePair(s, sep string) (image.Point, error) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return image.Point{}, fmt.Errorf("%q: want two numbers separated by %q", s, sep)
	}
	x, err := strconv.Atoi(a)
	if err != nil {
		return image.Point{}, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(x, y), nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
