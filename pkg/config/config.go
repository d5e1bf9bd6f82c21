package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CommandPrefix string `yaml:"command_prefix"`
	ModelSettings struct {
		Temperature float64 `yaml:"temperature"`
		TopP        float64 `yaml:"top_p"`
	} `yaml:"model_settings"`
	Sticker struct {
		CanvasWidth   int     `yaml:"canvas_width"`
		CanvasHeight  int     `yaml:"canvas_height"`
		MarginFrac    float64 `yaml:"margin_fraction"`
		StartFontSize int     `yaml:"start_font_size"`
		MinFontSize   int     `yaml:"min_font_size"`
		FontStep      int     `yaml:"font_step"`
		LineHeightMul float64 `yaml:"line_height_multiplier"`
		Background    string  `yaml:"background"`
	} `yaml:"sticker"`
	Glyphs struct {
		BaseURL       string  `yaml:"base_url"`
		CacheTTLHours float64 `yaml:"cache_ttl_hours"`
	} `yaml:"glyphs"`
}

func defaults() *Config {
	config := &Config{}
	config.CommandPrefix = "!"
	config.ModelSettings.Temperature = 1
	config.ModelSettings.TopP = 1
	config.Sticker.CanvasWidth = 512
	config.Sticker.CanvasHeight = 512
	config.Sticker.MarginFrac = 0.05
	config.Sticker.StartFontSize = 120
	config.Sticker.MinFontSize = 10
	config.Sticker.FontStep = 2
	config.Sticker.LineHeightMul = 1.2
	config.Sticker.Background = "#f5f5f0"
	config.Glyphs.BaseURL = ""
	config.Glyphs.CacheTTLHours = 168
	return config
}

func LoadConfig(path string) (*Config, error) {
	config := defaults()

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Unmarshal over the defaults so a partial file keeps sane values.
	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
