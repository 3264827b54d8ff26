// pixlzr shrinks images block by block and converts between images and
// PIXLZR containers.
//
// Usage:
//
//	pixlzr -i <input> -o <output> [options]
//
// The operation follows the file extensions. ".pix" and ".pixlzr", with an
// optional ".zst" suffix, are containers; anything else is an image. An
// output without extension is written as a container.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	_ "golang.org/x/image/webp"

	"github.com/svanichkin/pixlzr"
)

const version = "0.0.2"

type options struct {
	input       string
	output      string
	blockWidth  uint
	blockHeight uint
	factor      string
	filter      string
	directional bool
	force       bool
	backend     string
	multiplier  uint
	verbose     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "i", "", "input image or container")
	flag.StringVar(&opts.output, "o", "", "output image or container")
	flag.UintVar(&opts.blockWidth, "b", 64, "block width")
	flag.UintVar(&opts.blockHeight, "block-height", 0, "block height (default: block width)")
	flag.StringVar(&opts.factor, "k", "1", "shrink factor, [+|-][1/]number")
	flag.StringVar(&opts.filter, "f", "lanczos3", "filter (nearest, triangle, catmull-rom, gaussian, lanczos3)")
	flag.BoolVar(&opts.directional, "d", false, "shrink each axis by its own gradient")
	flag.BoolVar(&opts.force, "force", false, "shrink again when the input is already processed or the output is an image")
	flag.StringVar(&opts.backend, "backend", "convolution", "resize backend (convolution, fast)")
	flag.UintVar(&opts.multiplier, "m", pixlzr.DefaultMultiplicity, "supersampling multiplicity of the fast backend")
	flag.BoolVar(&opts.verbose, "v", false, "verbose output")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pixlzr -i <input> -o <output> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Operations, chosen by extension (.pix, .pixlzr, optional .zst):\n")
		fmt.Fprintf(os.Stderr, "  image -> pix    split and shrink\n")
		fmt.Fprintf(os.Stderr, "  image -> image  convert, shrinks with -force\n")
		fmt.Fprintf(os.Stderr, "  pix   -> image  expand, shrinks again with -force\n")
		fmt.Fprintf(os.Stderr, "  pix   -> pix    expand and re-split, shrinks with -force\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("pixlzr version %s (container %s)\n", version, pixlzr.CurrentVersion)
		os.Exit(0)
	}
	if opts.input == "" || opts.output == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// config turns the flags into a pixlzr.Config.
func (o options) config() (pixlzr.Config, error) {
	cfg := pixlzr.DefaultConfig()
	if o.blockWidth == 0 || o.blockWidth > 1<<32-1 || o.blockHeight > 1<<32-1 {
		return cfg, errors.Errorf("invalid block size %dx%d", o.blockWidth, o.blockHeight)
	}
	cfg.BlockWidth = uint32(o.blockWidth)
	cfg.BlockHeight = uint32(o.blockHeight)
	if cfg.BlockHeight == 0 {
		cfg.BlockHeight = cfg.BlockWidth
	}

	f, err := pixlzr.ParseFilter(o.filter)
	if err != nil {
		return cfg, err
	}
	cfg.Filter = f

	b, err := pixlzr.ParseBackend(o.backend)
	if err != nil {
		return cfg, err
	}
	cfg.Backend = b
	if o.multiplier > 0 && o.multiplier < 256 {
		cfg.Multiplicity = uint8(o.multiplier)
	}

	cfg.Factor = parseShrinkFactor(o.factor)
	cfg.Directional = o.directional
	return cfg, cfg.Validate()
}

func run(o options, stdout io.Writer) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	cfg.Apply()

	if o.verbose {
		fmt.Fprintf(stdout, "block=%dx%d, factor=%g, filter=%s, directional=%t, backend=%s, force=%t\n",
			cfg.BlockWidth, cfg.BlockHeight, cfg.Factor, cfg.Filter, cfg.Directional, cfg.Backend, o.force)
	}

	fromPix := pixlzr.IsContainerPath(o.input)
	toPix := isPixOutput(o.output)

	start := time.Now()
	switch {
	case !fromPix && toPix:
		err = imageToPix(o.input, o.output, cfg)
	case !fromPix && !toPix:
		err = imageToImage(o.input, o.output, cfg, o.force)
	case fromPix && !toPix:
		err = pixToImage(o.input, o.output, cfg, o.force)
	default:
		err = pixToPix(o.input, o.output, cfg, o.force)
	}
	if err != nil {
		return err
	}
	finish := time.Since(start)

	return report(stdout, o.input, o.output, finish)
}

// isPixOutput treats an output without extension as a container.
func isPixOutput(path string) bool {
	return filepath.Ext(path) == "" || pixlzr.IsContainerPath(path)
}

func imageToPix(in, out string, cfg pixlzr.Config) error {
	img, err := openImage(in)
	if err != nil {
		return err
	}
	p, err := cfg.Split(img)
	if err != nil {
		return err
	}
	cfg.Shrink(p)
	return p.Save(out)
}

func imageToImage(in, out string, cfg pixlzr.Config, force bool) error {
	img, err := openImage(in)
	if err != nil {
		return err
	}
	if force {
		if img, err = pixlzr.Process(img, cfg); err != nil {
			return err
		}
	}
	return saveImage(img, out)
}

func pixToImage(in, out string, cfg pixlzr.Config, force bool) error {
	p, err := pixlzr.Open(in)
	if err != nil {
		return err
	}
	img := p.ToImage(cfg.Filter)
	if force {
		if img, err = pixlzr.Process(img, cfg); err != nil {
			return err
		}
	}
	return saveImage(img, out)
}

func pixToPix(in, out string, cfg pixlzr.Config, force bool) error {
	src, err := pixlzr.Open(in)
	if err != nil {
		return err
	}
	p, err := cfg.Split(src.ToImage(cfg.Filter))
	if err != nil {
		return err
	}
	if force {
		cfg.Shrink(p)
	}
	return p.Save(out)
}

func openImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open the image [ %s ]", path)
	}
	return img, nil
}

// saveImage writes img by extension. ".qoi" is handled here, everything
// else by imaging.
func saveImage(img image.Image, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".qoi") {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "could not save the image [ %s ]", path)
		}
		defer f.Close()
		if err := qoi.Encode(f, img); err != nil {
			return errors.Wrapf(err, "could not save the image [ %s ]", path)
		}
		return nil
	}
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "could not save the image [ %s ]", path)
	}
	return nil
}

func report(w io.Writer, in, out string, elapsed time.Duration) error {
	inInfo, err := os.Stat(in)
	if err != nil {
		return errors.WithStack(err)
	}
	outInfo, err := os.Stat(out)
	if err != nil {
		return errors.WithStack(err)
	}
	inSize, outSize := inInfo.Size(), outInfo.Size()

	ratio := 0.0
	if inSize > 0 {
		ratio = float64(outSize) / float64(inSize)
	}
	fmt.Fprintf(w, "%s (%s) → %s (%s)\n", in, formatSize(inSize), out, formatSize(outSize))
	fmt.Fprintf(w, "ratio=%.3f, time=%s\n", ratio, elapsed)
	return nil
}

func formatSize(size int64) string {
	if size < 1024*1024 {
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
