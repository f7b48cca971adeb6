package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const DefaultPath = "config/sceneaudio.json"

type AppConfig struct {
	Logging     LoggingConfig     `json:"logging"`
	Synthesis   SynthesisConfig   `json:"synthesis"`
	Translation TranslationConfig `json:"translation"`
	Audio       AudioConfig       `json:"audio"`
	Narration   NarrationConfig   `json:"narration"`
	Assets      AssetsConfig      `json:"assets"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type SynthesisConfig struct {
	APIKey       string  `json:"api_key"`
	Endpoint     string  `json:"endpoint"`
	Model        string  `json:"model"`
	Voice        string  `json:"voice"`
	LanguageCode string  `json:"language_code"`
	Format       string  `json:"format"`
	SampleRate   int     `json:"sample_rate"`
	Volume       int     `json:"volume"`
	Rate         float64 `json:"rate"`
	Pitch        float64 `json:"pitch"`
}

type TranslationConfig struct {
	APIKey          string `json:"api_key"`
	BaseURL         string `json:"base_url"`
	Model           string `json:"model"`
	DefaultLanguage string `json:"default_language"`
}

type AudioConfig struct {
	Engine EngineConfig `json:"engine"`
	Mixer  MixerConfig  `json:"mixer"`
}

type EngineConfig struct {
	SampleRate int `json:"sample_rate"`
	Channels   int `json:"channels"`
}

type MixerConfig struct {
	NarrationVolume  float64 `json:"narration_volume"`
	SFXVolume        float64 `json:"sfx_volume"`
	MusicVolume      float64 `json:"music_volume"`
	TeardownMarginMs int     `json:"teardown_margin_ms"`
}

type NarrationConfig struct {
	ChunkMaxRunes int `json:"chunk_max_runes"`
}

type AssetsConfig struct {
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{},
		Synthesis: SynthesisConfig{
			Model:        "scenevoice-1",
			Voice:        "atlas",
			LanguageCode: "en-US",
			Format:       "pcm",
			SampleRate:   22050,
			Volume:       50,
			Rate:         1.0,
			Pitch:        1.0,
		},
		Translation: TranslationConfig{
			BaseURL:         "https://api.openai.com/v1",
			Model:           "gpt-4o-mini",
			DefaultLanguage: "en-US",
		},
		Audio: AudioConfig{
			Engine: EngineConfig{
				SampleRate: 44100,
				Channels:   2,
			},
			Mixer: MixerConfig{
				NarrationVolume:  1.0,
				SFXVolume:        0.7,
				MusicVolume:      0.3,
				TeardownMarginMs: 100,
			},
		},
		Narration: NarrationConfig{
			ChunkMaxRunes: 1200,
		},
		Assets: AssetsConfig{
			FetchTimeoutSeconds: 30,
		},
	}
}

func Load(path string) (*AppConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyEnv()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func (c *AppConfig) ApplyEnv() {
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		c.Logging.Format = format
	}

	if key := strings.TrimSpace(os.Getenv("SYNTH_API_KEY")); key != "" {
		c.Synthesis.APIKey = key
	}
	if key := strings.TrimSpace(os.Getenv("TRANSLATE_API_KEY")); key != "" {
		c.Translation.APIKey = key
	}
}

func (c *AppConfig) Validate() error {
	if c.Audio.Engine.SampleRate <= 0 {
		return errors.New("audio.engine.sample_rate must be positive")
	}
	if c.Audio.Engine.Channels <= 0 {
		return errors.New("audio.engine.channels must be positive")
	}
	if c.Synthesis.SampleRate <= 0 {
		return errors.New("synthesis.sample_rate must be positive")
	}
	if c.Narration.ChunkMaxRunes <= 0 {
		return errors.New("narration.chunk_max_runes must be positive")
	}
	if c.Audio.Mixer.TeardownMarginMs < 0 {
		return errors.New("audio.mixer.teardown_margin_ms must be non-negative")
	}
	if c.Assets.FetchTimeoutSeconds <= 0 {
		return errors.New("assets.fetch_timeout_seconds must be positive")
	}

	for name, vol := range map[string]float64{
		"audio.mixer.narration_volume": c.Audio.Mixer.NarrationVolume,
		"audio.mixer.sfx_volume":       c.Audio.Mixer.SFXVolume,
		"audio.mixer.music_volume":     c.Audio.Mixer.MusicVolume,
	} {
		if vol < 0 || vol > 1 {
			return fmt.Errorf("%s must be within [0,1]", name)
		}
	}

	return nil
}

func (c *AppConfig) ValidateKeys(requireSynth, requireTranslate bool) error {
	if requireSynth && strings.TrimSpace(c.Synthesis.APIKey) == "" {
		return errors.New("synthesis api_key is required")
	}
	if requireTranslate && strings.TrimSpace(c.Translation.APIKey) == "" {
		return errors.New("translation api_key is required")
	}
	return nil
}
