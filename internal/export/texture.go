package export

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"

	"udk-migrate/internal/asset"
	"udk-migrate/internal/legacy/texture"
	"udk-migrate/internal/progress"
)

// TextureStrategy re-encodes decoded textures as WebP (lossless) or PNG.
type TextureStrategy struct {
	Default string // "webp" (default) or "png"
	MaxSize int    // 0 keeps source resolution
}

func (s *TextureStrategy) Formats() []string {
	if s.Default == "png" {
		return []string{"png", "webp"}
	}
	return []string{"webp", "png"}
}

func (s *TextureStrategy) Export(w io.Writer, a *asset.Loaded, format string, sink progress.Sink) error {
	src, ok := a.Payload.(image.Image)
	if !ok || src == nil {
		return fmt.Errorf("payload is %T, want image.Image", a.Payload)
	}
	img := texture.ToNRGBA(src)
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("texture %s is empty", a.Ref)
	}

	if fitted := texture.Fit(img, s.MaxSize); fitted != img {
		sink.LogWarning(fmt.Sprintf("%s: downscaled %dx%d to %dx%d",
			a.Ref, img.Bounds().Dx(), img.Bounds().Dy(), fitted.Bounds().Dx(), fitted.Bounds().Dy()))
		img = fitted
	}

	switch format {
	case "png":
		return png.Encode(w, img)
	default:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("WebP encode: %w", err)
		}
		return nil
	}
}
