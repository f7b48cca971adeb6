package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/anderson0531/sceneflowai-audio/internal/audio"
	"github.com/anderson0531/sceneflowai-audio/internal/config"
	"github.com/anderson0531/sceneflowai-audio/internal/logging"
	"github.com/anderson0531/sceneflowai-audio/internal/scene"
	"github.com/anderson0531/sceneflowai-audio/internal/synth"
	"github.com/anderson0531/sceneflowai-audio/internal/text"
	"github.com/anderson0531/sceneflowai-audio/internal/translate"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default config/sceneaudio.json)")
	scenePath := flag.String("scene", "", "Path to a scene JSON file (required)")
	mode := flag.String("mode", "synopsis", "Narration mode: synopsis, full, or beats")
	voice := flag.String("voice", "", "Voice name (overrides config)")
	language := flag.String("language", "", "BCP 47 language code, e.g. fr-FR (overrides config)")
	dryRun := flag.Bool("dry-run", false, "Print the narration script and duration estimate without playing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	logging.SetSessionID(logging.NewSessionID())

	if *scenePath == "" {
		logging.Fatalf("-scene is required")
	}
	sc, err := loadScene(*scenePath)
	if err != nil {
		logging.Fatalf("load scene: %v", err)
	}

	narrationMode, err := parseMode(*mode)
	if err != nil {
		logging.Fatalf("%v", err)
	}

	script := scene.BuildNarrationScript(sc, narrationMode)
	script = text.CleanForSpeech(script)
	chunks := text.Chunk(script, cfg.Narration.ChunkMaxRunes)
	estimate := scene.EstimateDuration(sc)

	logging.Infof("scene %q: %d chunk(s), estimated %.0fs of audio", sc.Title, len(chunks), estimate)

	if *dryRun {
		fmt.Printf("Estimated duration: %.0fs\n\n%s\n", estimate, script)
		return
	}

	if err := cfg.ValidateKeys(true, *language != "" && *language != cfg.Translation.DefaultLanguage); err != nil {
		logging.Fatalf("%v", err)
	}

	var translator translate.Translator
	if cfg.Translation.APIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		translator, err = translate.NewLLMTranslator(ctx, translate.Config{
			APIKey:  cfg.Translation.APIKey,
			BaseURL: cfg.Translation.BaseURL,
			Model:   cfg.Translation.Model,
		})
		cancel()
		if err != nil {
			logging.Fatalf("init translator: %v", err)
		}
	}

	player := audio.NewSequentialNarrationPlayer(
		synth.NewWSProvider(),
		translator,
		audio.NewPortAudioFactory(cfg.Audio.Engine.SampleRate, cfg.Audio.Engine.Channels),
		audio.NarratorConfig{
			Synthesis: synth.Config{
				APIKey:       cfg.Synthesis.APIKey,
				Endpoint:     cfg.Synthesis.Endpoint,
				Model:        cfg.Synthesis.Model,
				Voice:        cfg.Synthesis.Voice,
				LanguageCode: cfg.Synthesis.LanguageCode,
				Format:       cfg.Synthesis.Format,
				SampleRate:   cfg.Synthesis.SampleRate,
				Volume:       cfg.Synthesis.Volume,
				Rate:         cfg.Synthesis.Rate,
				Pitch:        cfg.Synthesis.Pitch,
			},
			DefaultLanguage: cfg.Translation.DefaultLanguage,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	params := audio.VoiceParams{Voice: *voice, LanguageCode: *language}
	if err := player.Play(ctx, chunks, params); err != nil {
		logging.Fatalf("narration failed: %v", err)
	}

	stats := player.Stats()
	logging.Infof("narration %s: %d/%d chunks played", player.State(), stats.PlayedChunks, stats.TotalChunks)
}

func loadScene(path string) (scene.Scene, error) {
	var sc scene.Scene
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, err
	}
	if err := json.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

func parseMode(s string) (scene.NarrationMode, error) {
	switch scene.NarrationMode(s) {
	case scene.ModeSynopsis, scene.ModeFull, scene.ModeBeats:
		return scene.NarrationMode(s), nil
	}
	return "", fmt.Errorf("unknown narration mode %q", s)
}
