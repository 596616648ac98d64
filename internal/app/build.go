// Package app wires configuration into a running service: stores,
// provider adapters, the speaker pipeline, greeting policy, sessions,
// and the HTTP server.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/inovafinance/isa-voice/internal/audiocache"
	"github.com/inovafinance/isa-voice/internal/config"
	"github.com/inovafinance/isa-voice/internal/greeting"
	"github.com/inovafinance/isa-voice/internal/httpapi"
	"github.com/inovafinance/isa-voice/internal/observability"
	"github.com/inovafinance/isa-voice/internal/playback"
	"github.com/inovafinance/isa-voice/internal/session"
	"github.com/inovafinance/isa-voice/internal/settings"
	"github.com/inovafinance/isa-voice/internal/storage"
	"github.com/inovafinance/isa-voice/internal/transit"
	"github.com/inovafinance/isa-voice/internal/voice"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Speaker  *voice.Speaker
	Greeter  *greeting.Policy
	Sessions *session.Manager
	Metrics  *observability.Metrics

	// Cleanup should be called on shutdown to release external
	// resources (database pools, in-flight playback).
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	cacheStore, err := audiocache.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("audio cache init failed: %w", err)
	}
	cache := audiocache.NewMemo(cacheStore, func(outcome string) {
		metrics.CacheLookups.WithLabelValues(outcome).Inc()
	})

	settingsStore, err := settings.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = cacheStore.Close()
		return nil, fmt.Errorf("settings store init failed: %w", err)
	}

	adapters, gemini, err := resolveAdapters(cfg, logger)
	if err != nil {
		_ = cacheStore.Close()
		_ = settingsStore.Close()
		return nil, err
	}

	playbackMgr := playback.NewManager(func() { metrics.PlaybackPreemptions.Inc() })
	chain := voice.NewChain(adapters, metrics, logger)
	native := voice.NewNativeAdapter(cfg.NativeSpeechCommand, logger)
	speaker := voice.NewSpeaker(chain, native, cache, playbackMgr, cfg.SynthesisTimeout, logger)

	greeter := greeting.NewPolicy(
		settingsStore,
		asyncSpeaker{speaker},
		playbackMgr.Active,
		cfg.VoiceDefaultEnabled,
		func() { metrics.GreetingsSpoken.Inc() },
		logger,
	)

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(s *session.Session) {
		greeter.ForgetTab(s.ID)
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	files, err := storage.NewFileStore(cfg.AudioDir)
	if err != nil {
		_ = cacheStore.Close()
		_ = settingsStore.Close()
		return nil, err
	}

	transitData := transit.NewDataset(cfg.GTFSArchivePath, logger)

	var geminiAdapter voice.Synthesizer
	if gemini != nil {
		geminiAdapter = gemini
	}
	api := httpapi.New(cfg, speaker, geminiAdapter, greeter, sessions, transitData, files, metrics, logger)

	cleanup := func() error {
		playbackMgr.StopAll()
		var errs []string
		if err := settingsStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := cache.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Speaker:  speaker,
		Greeter:  greeter,
		Sessions: sessions,
		Metrics:  metrics,
		Cleanup:  cleanup,
	}, nil
}

// asyncSpeaker makes greetings fire-and-forget: the policy returns as
// soon as the utterance is queued, detached from the request context so
// the response finishing does not cut the audio off.
type asyncSpeaker struct {
	speaker *voice.Speaker
}

func (a asyncSpeaker) Speak(ctx context.Context, text string) {
	a.speaker.SpeakAsync(context.WithoutCancel(ctx), text)
}
