package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"
)

// extractImage decodes an image, converts it to single-channel grayscale and
// runs tesseract over it. Grayscale conversion is a required preprocessing
// step for acceptable recognition accuracy.
func (e *Extractor) extractImage(ctx context.Context, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	gray := toGrayscale(img)

	tmpDir, err := os.MkdirTemp("", "invreader-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			log.Printf("extractor: failed to remove temp dir %q: %v", tmpDir, rmErr)
		}
	}()

	path := filepath.Join(tmpDir, "input.png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	if err := png.Encode(f, gray); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encoding grayscale image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp image: %w", err)
	}

	return e.tesseractOCR(ctx, path)
}

// toGrayscale converts any image to 8-bit single-channel grayscale.
func toGrayscale(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// tesseractOCR runs `tesseract <file> stdout -l <lang>` through the Runner.
func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	if e.cfg.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.TimeoutSecs)*time.Second)
		defer cancel()
	}

	args := []string{path, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
