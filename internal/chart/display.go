package chart

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot/vg/vgimg"

	apperrors "revcompare/internal/errors"
)

// WritePNG encodes the canvas as PNG.
func WritePNG(w io.Writer, img *vgimg.Canvas) error {
	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

// SavePNG writes the canvas to path.
func SavePNG(path string, img *vgimg.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Presenter puts a rendered figure on the output surface: a file when
// Output is set, otherwise the platform image viewer.
type Presenter struct {
	Output string
	Open   func(path string) error
	Logger zerolog.Logger
}

// NewPresenter creates a Presenter that opens figures with the system viewer.
func NewPresenter(output string, logger zerolog.Logger) *Presenter {
	return &Presenter{
		Output: output,
		Open:   openWithViewer,
		Logger: logger,
	}
}

// Present shows img and returns the path of the PNG it wrote.
func (p *Presenter) Present(img *vgimg.Canvas) (string, error) {
	if p.Output != "" {
		if err := SavePNG(p.Output, img); err != nil {
			return "", err
		}
		p.Logger.Info().Str("path", p.Output).Msg("Chart saved")
		return p.Output, nil
	}

	f, err := os.CreateTemp("", "revcompare-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	if err := WritePNG(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := p.Open(path); err != nil {
		return path, apperrors.Wrapf(err, "chart written to %s", path)
	}
	p.Logger.Info().Str("path", path).Msg("Chart opened in viewer")
	return path, nil
}

func openWithViewer(path string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{path}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		name, args = "xdg-open", []string{path}
	}

	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s: %w", name, apperrors.ErrNoDisplay)
	}
	return exec.Command(name, args...).Start()
}
