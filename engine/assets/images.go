package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/resources"
)

// LoadImage decodes a PNG, JPEG, BMP, TIFF or WebP file into 8 bit RGBA.
func LoadImage(path string) (resources.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return resources.Image{}, fmt.Errorf("failed to open image %q: %w", path, err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return resources.Image{}, fmt.Errorf("failed to decode image %q: %w", path, err)
	}
	img := resources.ImageFrom(src)
	w, h := img.Size()
	core.LogDebug("loaded %s image %q (%dx%d)", format, path, w, h)
	return img, nil
}

// LoadTexture loads path into a texture registered with manager under the file's base name.
func LoadTexture(path string, manager *resources.Manager) (*resources.Texture, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	t := resources.NewTexture(img, manager)
	if manager != nil {
		manager.RegisterTexture(baseName(path), t)
	}
	return t, nil
}

/**
 * @brief Loads the six faces of a cubemap, indexed by resources.CubemapFace.
 * Faces are decoded in parallel.
 * @return An error if a face fails to load or the faces do not form a valid cubemap.
 */
func LoadCubemap(name string, faces [resources.CubemapFaceCount]string, manager *resources.Manager) (*resources.Cubemap, error) {
	js, err := NewJobSystem(min(len(faces), runtime.NumCPU()), len(faces))
	if err != nil {
		return nil, err
	}

	var (
		images [resources.CubemapFaceCount]resources.Image
		errs   [resources.CubemapFaceCount]error
	)
	for i, path := range faces {
		js.Submit(JobTask{
			Run: func() error {
				img, err := LoadImage(path)
				images[i] = img
				return err
			},
			OnFailure: func(err error) { errs[i] = err },
		})
	}
	js.Shutdown()
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}

	c := resources.NewCubemap(manager)
	for i, img := range images {
		c.SetFace(resources.CubemapFace(i), img)
	}
	if !c.IsValid() {
		c.Destroy()
		return nil, fmt.Errorf("cubemap %q: faces must be square and of one size", name)
	}
	if manager != nil {
		manager.RegisterCubemap(name, c)
	}
	return c, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
