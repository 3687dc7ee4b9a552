package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/ferrite/engine/core"
)

/** @brief Engine configuration, loaded from a TOML file at boot. Missing
 * keys keep their default value. */
type Config struct {
	App      AppConfig      `toml:"app"`
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
}

type AppConfig struct {
	/** @brief The application name used in windowing. */
	Name string `toml:"name"`
	/** @brief Minimum reported log level: debug, info, warn or error. */
	LogLevel string `toml:"log_level"`
}

type WindowConfig struct {
	// Window starting position, if applicable.
	PosX uint32 `toml:"pos_x"`
	PosY uint32 `toml:"pos_y"`
	// Window starting size.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	/** @brief The number of swapchain images to request. The surface may
	 * grant more; swapchain-redundant resources follow the granted count. */
	SwapchainImages uint32 `toml:"swapchain_images"`
	/** @brief Renders every pipeline in wireframe mode when true. */
	Wireframe bool `toml:"wireframe"`
}

type AssetsConfig struct {
	/** @brief Base directory for shaders and textures. */
	Dir string `toml:"dir"`
	/** @brief Watches the asset directory and fires change events when true. */
	Watch bool `toml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "Ferrite Engine",
			LogLevel: "info",
		},
		Window: WindowConfig{
			PosX:   100,
			PosY:   100,
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			SwapchainImages: 3,
		},
		Assets: AssetsConfig{
			Dir:   "assets",
			Watch: true,
		},
	}
}

/**
 * @brief Loads the configuration at the given path on top of the defaults.
 * A missing file is not an error; a malformed one is.
 */
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogInfo("no configuration at '%s', using defaults", path)
			return cfg, nil
		}
		core.LogError(err.Error())
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		err = fmt.Errorf("parsing configuration '%s': %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("configuration: window size %dx%d is not drawable",
			c.Window.Width, c.Window.Height)
	}
	if c.Renderer.SwapchainImages < 2 {
		return fmt.Errorf("configuration: at least 2 swapchain images are required, got %d",
			c.Renderer.SwapchainImages)
	}
	return nil
}
