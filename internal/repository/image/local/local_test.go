package local

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"image-watermarker/internal/domain"
	repoImage "image-watermarker/internal/repository/image"

	"github.com/wb-go/wbf/zlog"
)

func newRepo(t *testing.T) *ImageRepository {
	t.Helper()
	zlog.Init()
	repo, err := NewImageRepository(90, &zlog.Logger)
	if err != nil {
		t.Fatalf("NewImageRepository: %v", err)
	}
	return repo
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h, color.RGBA{R: 20, G: 20, B: 20, A: 255})); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(w, h, color.RGBA{R: 200, G: 50, B: 50, A: 255}), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
}

func TestReadMetadata(t *testing.T) {
	repo := newRepo(t)
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "a.png")
	writePNG(t, pngPath, 120, 90)
	jpgPath := filepath.Join(dir, "b.JPG")
	writeJPEG(t, jpgPath, 64, 48)

	dims, err := repo.ReadMetadata(context.Background(), pngPath)
	if err != nil {
		t.Fatalf("ReadMetadata png: %v", err)
	}
	if dims != (domain.Dimensions{Width: 120, Height: 90}) {
		t.Errorf("png dims: got %+v", dims)
	}

	dims, err = repo.ReadMetadata(context.Background(), jpgPath)
	if err != nil {
		t.Fatalf("ReadMetadata jpeg: %v", err)
	}
	if dims != (domain.Dimensions{Width: 64, Height: 48}) {
		t.Errorf("jpeg dims: got %+v", dims)
	}
}

func TestReadMetadataRejectsNonImages(t *testing.T) {
	repo := newRepo(t)
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.jpg")
	if err := os.WriteFile(corrupt, []byte("definitely not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := repo.ReadMetadata(context.Background(), corrupt)
	if !errors.Is(err, domain.ErrMetadataRead) {
		t.Errorf("corrupt file: got %v, want ErrMetadataRead", err)
	}
	if !errors.Is(err, repoImage.ErrUnsupportedFormat) {
		t.Errorf("corrupt file: got %v, want ErrUnsupportedFormat", err)
	}

	_, err = repo.ReadMetadata(context.Background(), filepath.Join(dir, "missing.png"))
	if !errors.Is(err, domain.ErrMetadataRead) {
		t.Errorf("missing file: got %v, want ErrMetadataRead", err)
	}
}

func TestListFilesSkipsDirectories(t *testing.T) {
	repo := newRepo(t)
	dir := t.TempDir()

	writePNG(t, filepath.Join(dir, "b.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	if err := os.Mkdir(filepath.Join(dir, "folder.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := repo.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(names) != 2 || names[0] != "a.png" || names[1] != "b.png" {
		t.Errorf("names: got %v, want [a.png b.png]", names)
	}
}

func TestDirExistsAndEnsureDir(t *testing.T) {
	repo := newRepo(t)
	dir := t.TempDir()

	nested := filepath.Join(dir, "x", "y", "z")
	ok, err := repo.DirExists(nested)
	if err != nil || ok {
		t.Fatalf("DirExists before create: %v, %v", ok, err)
	}

	if err := repo.EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	ok, err = repo.DirExists(nested)
	if err != nil || !ok {
		t.Fatalf("DirExists after create: %v, %v", ok, err)
	}

	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.DirExists(file); ok {
		t.Error("a regular file is not a directory")
	}
	if err := repo.EnsureDir(filepath.Join(file, "sub")); !errors.Is(err, domain.ErrOutputDirectoryCreate) {
		t.Errorf("EnsureDir under a file: got %v, want ErrOutputDirectoryCreate", err)
	}
}

func TestExtractRegion(t *testing.T) {
	repo := newRepo(t)
	img := solid(100, 100, color.White)

	out, err := repo.ExtractRegion(img, domain.CropRectangle{Left: 0, Top: 10, Width: 100, Height: 80})
	if err != nil {
		t.Fatalf("ExtractRegion: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Errorf("bounds: got %v, want 100x80", b)
	}

	_, err = repo.ExtractRegion(img, domain.CropRectangle{Left: 50, Top: 0, Width: 100, Height: 10})
	if !errors.Is(err, repoImage.ErrRegionOutOfBounds) {
		t.Errorf("out of bounds: got %v", err)
	}
}

func brightPixels(img image.Image) int {
	count := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r>>8 > 128 {
				count++
			}
		}
	}
	return count
}

func TestCompositeDrawsText(t *testing.T) {
	repo := newRepo(t)
	img := solid(100, 80, color.Black)

	overlay := &domain.OverlayDescriptor{
		Width:    100,
		Height:   80,
		FontSize: 20,
		Color:    color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Opacity:  1,
		Runs:     []domain.GlyphRun{{Text: "WM", Anchor: domain.Point{X: 50, Y: 40}}},
	}

	out, err := repo.Composite(img, overlay)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if brightPixels(out) == 0 {
		t.Error("expected watermark pixels on the canvas")
	}
	if brightPixels(img) != 0 {
		t.Error("source image must not be modified")
	}

	// text is centered, so the left and right edges stay untouched
	if r, _, _, _ := out.At(2, 40).RGBA(); r != 0 {
		t.Errorf("left edge changed: r=%d", r)
	}
	if r, _, _, _ := out.At(97, 40).RGBA(); r != 0 {
		t.Errorf("right edge changed: r=%d", r)
	}
}

func TestCompositeZeroOpacityLeavesImage(t *testing.T) {
	repo := newRepo(t)
	img := solid(40, 40, color.Black)

	overlay := &domain.OverlayDescriptor{
		Width: 40, Height: 40, FontSize: 20,
		Color:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Opacity: 0,
		Runs:    []domain.GlyphRun{{Text: "WM", Anchor: domain.Point{X: 20, Y: 20}}},
	}

	out, err := repo.Composite(img, overlay)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if brightPixels(out) != 0 {
		t.Error("zero opacity must not change pixels")
	}
}

func TestCompositeRejectsSizeMismatch(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Composite(solid(10, 10, color.Black), &domain.OverlayDescriptor{Width: 20, Height: 10})
	if !errors.Is(err, repoImage.ErrOverlayMismatch) {
		t.Errorf("got %v, want ErrOverlayMismatch", err)
	}
}

func TestWriteToFile(t *testing.T) {
	repo := newRepo(t)
	dir := t.TempDir()
	img := solid(30, 20, color.White)

	for _, name := range []string{"out.png", "out.jpg", "OUT.JPEG"} {
		path := filepath.Join(dir, name)
		if err := repo.WriteToFile(context.Background(), img, path); err != nil {
			t.Fatalf("WriteToFile %s: %v", name, err)
		}
		dims, err := repo.ReadMetadata(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadMetadata %s: %v", name, err)
		}
		if dims != (domain.Dimensions{Width: 30, Height: 20}) {
			t.Errorf("%s dims: got %+v", name, dims)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("expected only the three outputs, found %d entries", len(entries))
	}
}

func TestWriteToFileUnsupportedExtension(t *testing.T) {
	repo := newRepo(t)
	dir := t.TempDir()

	err := repo.WriteToFile(context.Background(), solid(2, 2, color.White), filepath.Join(dir, "out.webp"))
	if !errors.Is(err, repoImage.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no file should be left behind, found %d", len(entries))
	}
}
