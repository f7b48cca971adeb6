package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/anderson0531/sceneflowai-audio/internal/assets"
	"github.com/anderson0531/sceneflowai-audio/internal/audio"
	"github.com/anderson0531/sceneflowai-audio/internal/config"
	"github.com/anderson0531/sceneflowai-audio/internal/logging"
)

// trackList is the on-disk shape of a scene's audio plan.
type trackList struct {
	Tracks []audio.Track `json:"tracks"`
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default config/sceneaudio.json)")
	tracksPath := flag.String("tracks", "", "Path to a track list JSON file (required)")
	narrationVol := flag.Float64("narration-volume", -1, "Narration channel gain 0..1 (overrides config)")
	sfxVol := flag.Float64("sfx-volume", -1, "SFX channel gain 0..1 (overrides config)")
	musicVol := flag.Float64("music-volume", -1, "Music channel gain 0..1 (overrides config)")
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

	if *tracksPath == "" {
		logging.Fatalf("-tracks is required")
	}
	tracks, err := loadTracks(*tracksPath)
	if err != nil {
		logging.Fatalf("load tracks: %v", err)
	}

	volumes := audio.NewChannelVolumeStateWith(
		cfg.Audio.Mixer.NarrationVolume,
		cfg.Audio.Mixer.SFXVolume,
		cfg.Audio.Mixer.MusicVolume,
	)
	applyVolumeFlag(volumes, audio.ChannelNarration, *narrationVol)
	applyVolumeFlag(volumes, audio.ChannelSFX, *sfxVol)
	applyVolumeFlag(volumes, audio.ChannelMusic, *musicVol)

	mixer := audio.NewSceneMixer(
		assets.NewHTTPFetcher(time.Duration(cfg.Assets.FetchTimeoutSeconds)*time.Second),
		volumes,
		audio.NewPortAudioFactory(cfg.Audio.Engine.SampleRate, cfg.Audio.Engine.Channels),
		&audio.MixerConfig{
			TeardownMargin: time.Duration(cfg.Audio.Mixer.TeardownMarginMs) * time.Millisecond,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := mixer.Play(ctx, tracks); err != nil {
		logging.Fatalf("playback failed: %v", err)
	}
	logging.Infof("playback finished")
}

func loadTracks(path string) ([]audio.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list trackList
	if err := json.Unmarshal(data, &list); err == nil && len(list.Tracks) > 0 {
		return list.Tracks, nil
	}

	// A bare JSON array works too.
	var tracks []audio.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tracks, nil
}

func applyVolumeFlag(volumes *audio.ChannelVolumeState, ch audio.Channel, v float64) {
	if v >= 0 {
		volumes.Set(ch, v)
	}
}
