package pdfextract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// Rendered pages narrower than this are upscaled before recognition.
const minOCRWidth = 1200

type TesseractConfig struct {
	TesseractPath string
	PdftoppmPath  string
	Language      string
	DPI           int
}

// TesseractOCR renders a page with poppler's pdftoppm and reads it back with
// the tesseract CLI.
type TesseractOCR struct {
	cfg TesseractConfig
}

func NewTesseractOCR(cfg TesseractConfig) *TesseractOCR {
	if cfg.TesseractPath == "" {
		cfg.TesseractPath = "tesseract"
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &TesseractOCR{cfg: cfg}
}

// Available reports whether both binaries can be found.
func (o *TesseractOCR) Available() bool {
	if _, err := exec.LookPath(o.cfg.TesseractPath); err != nil {
		return false
	}
	if _, err := exec.LookPath(o.cfg.PdftoppmPath); err != nil {
		return false
	}
	return true
}

func (o *TesseractOCR) RecognizePage(ctx context.Context, pdfData []byte, page int) (string, error) {
	img, err := o.renderPage(ctx, pdfData, page)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, normalize(img)); err != nil {
		return "", fmt.Errorf("encode page image failed: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.cfg.TesseractPath, "stdin", "stdout", "-l", o.cfg.Language)
	cmd.Stdin = &buf
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (o *TesseractOCR) renderPage(ctx context.Context, pdfData []byte, page int) (image.Image, error) {
	dir, err := os.MkdirTemp("", "pdfqa-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create ocr temp dir failed: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("write ocr input failed: %w", err)
	}

	root := filepath.Join(dir, "page")
	pageArg := strconv.Itoa(page)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.cfg.PdftoppmPath,
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(o.cfg.DPI),
		"-png", "-singlefile",
		input, root,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(root + ".png")
	if err != nil {
		return nil, fmt.Errorf("open rendered page failed: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page failed: %w", err)
	}
	return img, nil
}

// normalize converts src to grayscale, upscaling narrow renders so small
// glyphs stay legible to the recognizer.
func normalize(src image.Image) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > 0 && w < minOCRWidth {
		h = h * minOCRWidth / w
		w = minOCRWidth
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
