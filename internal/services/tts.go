package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
)

// maxSynthesisChars is the provider-side cap on input length.
const maxSynthesisChars = 5000

// SpeechSynthesizer is the boundary to the cloud text-to-speech provider.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type TTSService interface {
	SynthesizeSpeech(ctx context.Context, text string) (string, error)
}

type ttsService struct {
	log   *logger.Logger
	synth SpeechSynthesizer
}

func NewTTSService(baseLog *logger.Logger, synth SpeechSynthesizer) TTSService {
	return &ttsService{
		log:   baseLog.With("service", "TTSService"),
		synth: synth,
	}
}

// SynthesizeSpeech returns the synthesized audio as a data URL the frontend
// can hand straight to an <audio> element.
func (s *ttsService) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apierr.InvalidArgument("text is required for synthesis")
	}
	if n := utf8.RuneCountInString(text); n > maxSynthesisChars {
		return "", apierr.InvalidArgument("text too long for synthesis (%d characters). Maximum is %d characters", n, maxSynthesisChars)
	}
	if s.synth == nil {
		return "", apierr.Unavailable(fmt.Errorf("speech synthesis is not configured"))
	}

	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		s.log.Error("Speech synthesis failed", "error", err, "textLength", len(text))
		return "", apierr.Unavailable(fmt.Errorf("synthesize speech: %w", err))
	}
	if len(audio) == 0 {
		return "", apierr.Unavailable(fmt.Errorf("no audio content received from speech provider"))
	}

	s.log.Info("Speech synthesis successful", "textLength", len(text), "audioSizeBytes", len(audio))
	return "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(audio), nil
}
