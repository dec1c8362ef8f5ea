package core

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Title   string `toml:"title"`
	X       int    `toml:"x"`
	Y       int    `toml:"y"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	VSync   bool   `toml:"vsync"`
	Samples int    `toml:"samples"`
}

type RendererConfig struct {
	// Backend selects the renderer implementation. Only "opengl" is available.
	Backend   string `toml:"backend"`
	MaxLights int    `toml:"max_lights"`
	// Translucency is either "oit" (weighted blended) or "blend" (plain alpha blending).
	Translucency string     `toml:"translucency"`
	ClearColor   [4]float32 `toml:"clear_color"`
	// DeferredDeletionCapacity bounds the number of cache deletions kept around
	// while the graphics context is unavailable.
	DeferredDeletionCapacity int `toml:"deferred_deletion_capacity"`
}

// MaxLightSlots is the size of the light arrays in the scene uniform block.
const MaxLightSlots = 8

type LogConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	ShaderDir string `toml:"shader_dir"`
	HotReload bool   `toml:"hot_reload"`
}

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
	Assets   AssetsConfig   `toml:"assets"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "Lumen",
			X:       100,
			Y:       100,
			Width:   1280,
			Height:  720,
			VSync:   true,
			Samples: 4,
		},
		Renderer: RendererConfig{
			Backend:                  "opengl",
			MaxLights:                8,
			Translucency:             "oit",
			ClearColor:               [4]float32{0.1, 0.1, 0.12, 1.0},
			DeferredDeletionCapacity: 256,
		},
		Log: LogConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			ShaderDir: "assets/shaders",
			HotReload: false,
		},
	}
}

// ParseConfig decodes TOML on top of DefaultConfig, so absent keys keep their defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.MaxLights <= 0 || c.Renderer.MaxLights > MaxLightSlots {
		return fmt.Errorf("renderer.max_lights must be in [1, %d], got %d", MaxLightSlots, c.Renderer.MaxLights)
	}
	switch c.Renderer.Translucency {
	case "oit", "blend":
	default:
		return fmt.Errorf("renderer.translucency must be \"oit\" or \"blend\", got %q", c.Renderer.Translucency)
	}
	if c.Renderer.DeferredDeletionCapacity < 0 {
		return fmt.Errorf("renderer.deferred_deletion_capacity must be >= 0")
	}
	return nil
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
