package overlay

import (
	"strings"
	"sync"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/store"
	"github.com/ovrlab/streambot/internal/telemetry"
	"github.com/ovrlab/streambot/internal/util"
	"go.uber.org/zap"
)

const maxTtsRunes = 300

// Sender validates and enqueues presentation events. Items referencing an
// unknown alert type or sfx key are dropped here; the queue itself never
// validates.
type Sender struct {
	queue *Queue

	mu     sync.RWMutex
	alerts map[string]store.AlertConfig
	sfx    map[string]store.SfxConfig

	logger *zap.Logger
}

func NewSender(queue *Queue, logger *zap.Logger) *Sender {
	return &Sender{
		queue:  queue,
		alerts: make(map[string]store.AlertConfig),
		sfx:    make(map[string]store.SfxConfig),
		logger: logger,
	}
}

// SetCatalogs swaps in fresh alert and sfx catalogs, called at startup and
// whenever the admin panel mutates them.
func (s *Sender) SetCatalogs(alerts map[string]store.AlertConfig, sfx map[string]store.SfxConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if alerts != nil {
		s.alerts = alerts
	}
	if sfx != nil {
		s.sfx = sfx
	}
}

// SendAlert enqueues a visual alert. Unknown or contentless types are
// dropped.
func (s *Sender) SendAlert(alertType string, params map[string]string) {
	s.mu.RLock()
	cfg, ok := s.alerts[alertType]
	s.mu.RUnlock()

	if !ok {
		s.logger.Debug("dropping unknown alert type", zap.String("type", alertType))
		s.dropped()
		return
	}
	if cfg.Message == "" && cfg.Graphic == "" && cfg.Sound == "" {
		s.dropped()
		return
	}

	duration := cfg.Duration
	if duration < 1 {
		duration = 1
	}

	// The message template is rendered here so the overlay page only ever
	// sees final text.
	message := cfg.Message
	for k, v := range params {
		message = strings.ReplaceAll(message, "${"+k+"}", v)
	}
	payload := map[string]string{}
	for k, v := range params {
		payload[k] = v
	}
	payload["message"] = message
	if cfg.Graphic != "" {
		payload["graphic"] = cfg.Graphic
	}
	if cfg.Sound != "" {
		payload["sound"] = cfg.Sound
	}

	s.queue.Enqueue(domain.PresentationEvent{
		Kind:        domain.PresentationAlert,
		TypeOrKey:   alertType,
		Payload:     payload,
		DurationMs:  duration * 1000,
		VideoVolume: cfg.VideoVolume,
		SoundVolume: cfg.SoundVolume,
	})
	s.enqueued(domain.PresentationAlert)
	s.logger.Info("alert sent", zap.String("type", alertType))
}

// SendSfx enqueues a sound effect; reports false for unknown keys.
func (s *Sender) SendSfx(key string) bool {
	s.mu.RLock()
	cfg, ok := s.sfx[key]
	s.mu.RUnlock()

	if !ok {
		s.dropped()
		return false
	}

	s.queue.Enqueue(domain.PresentationEvent{
		Kind:        domain.PresentationSfx,
		TypeOrKey:   key,
		Payload:     map[string]string{"file": cfg.File},
		SoundVolume: cfg.Volume,
	})
	s.enqueued(domain.PresentationSfx)
	return true
}

// SendTts enqueues a text-to-speech utterance. Long texts are clipped so a
// single command cannot occupy the overlay for minutes.
func (s *Sender) SendTts(text string) {
	if text == "" {
		return
	}
	s.queue.Enqueue(domain.PresentationEvent{
		Kind:      domain.PresentationTts,
		TypeOrKey: "tts",
		Payload:   map[string]string{"text": util.TruncateString(text, maxTtsRunes)},
	})
	s.enqueued(domain.PresentationTts)
}

// SendTrivia shows a trivia line on the overlay.
func (s *Sender) SendTrivia(text string) {
	s.SendAlert("trivia", map[string]string{"message": text})
}

func (s *Sender) enqueued(kind domain.PresentationKind) {
	if telemetry.EventsEnqueued != nil {
		telemetry.EventsEnqueued.WithLabelValues(string(kind)).Inc()
	}
	telemetry.SetQueueDepth(s.queue.Depth())
}

func (s *Sender) dropped() {
	if telemetry.EventsDropped != nil {
		telemetry.EventsDropped.Inc()
	}
}
