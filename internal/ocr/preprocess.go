package ocr

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
)

// Preprocessing chain for rasterized pages before recognition: grayscale,
// mild 3x3 Gaussian blur for noise reduction, then Otsu binarization to
// maximize text/background contrast.

func grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return gray
}

// gaussianBlur3 applies a 3x3 Gaussian kernel (1 2 1 / 2 4 2 / 1 2 1, /16).
// Border pixels are copied unchanged.
func gaussianBlur3(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	copy(dst.Pix, src.Pix)
	if w < 3 || h < 3 {
		return dst
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*src.Stride + x
			sum := 1*int(src.Pix[i-src.Stride-1]) + 2*int(src.Pix[i-src.Stride]) + 1*int(src.Pix[i-src.Stride+1]) +
				2*int(src.Pix[i-1]) + 4*int(src.Pix[i]) + 2*int(src.Pix[i+1]) +
				1*int(src.Pix[i+src.Stride-1]) + 2*int(src.Pix[i+src.Stride]) + 1*int(src.Pix[i+src.Stride+1])
			dst.Pix[y*dst.Stride+x] = uint8(sum / 16)
		}
	}
	return dst
}

// otsuThreshold picks the threshold that maximizes between-class variance
// over the grayscale histogram.
func otsuThreshold(src *image.Gray) uint8 {
	var hist [256]int
	for _, p := range src.Pix {
		hist[p]++
	}
	total := float64(len(src.Pix))
	if total == 0 {
		return 0
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB, maxVariance float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVariance {
			maxVariance = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// binarize maps every pixel above the threshold to white and the rest to black.
func binarize(src *image.Gray, threshold uint8) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, p := range src.Pix {
		if p > threshold {
			dst.Pix[i] = 255
		} else {
			dst.Pix[i] = 0
		}
	}
	return dst
}

// PreprocessPNG reads a rendered page image, applies the preprocessing chain
// and writes the result next to the input. Returns the path of the binarized
// copy for the recognizer to consume.
func PreprocessPNG(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open page image: %w", err)
	}
	img, err := png.Decode(f)
	closeErr := f.Close()
	if err != nil {
		return "", fmt.Errorf("decode page image: %w", err)
	}
	if closeErr != nil {
		return "", closeErr
	}

	gray := grayscale(img)
	blurred := gaussianBlur3(gray)
	bin := binarize(blurred, otsuThreshold(blurred))

	outPath := strings.TrimSuffix(path, ".png") + ".bin.png"
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create binarized image: %w", err)
	}
	if err := png.Encode(out, bin); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("encode binarized image: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}
