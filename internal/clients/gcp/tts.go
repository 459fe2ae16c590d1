package gcp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hanashi-app/backend/internal/logger"
)

const defaultVoiceName = "ja-JP-Neural2-B"

// TextToSpeech synthesizes Japanese speech as MP3 audio.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Close() error
}

type ttsService struct {
	log        *logger.Logger
	client     *texttospeech.Client
	voiceName  string
	maxRetries int
}

func NewTextToSpeech(log *logger.Logger) (TextToSpeech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.TextToSpeech")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()

	c, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}

	voice := strings.TrimSpace(os.Getenv("TTS_VOICE_NAME"))
	if voice == "" {
		voice = defaultVoiceName
	}

	return &ttsService{
		log:        slog,
		client:     c,
		voiceName:  voice,
		maxRetries: 4,
	}, nil
}

func (s *ttsService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *ttsService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "ja-JP",
			Name:         s.voiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  1.0,
		},
	}

	resp, err := s.retry(ctx, func() (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return s.client.SynthesizeSpeech(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("texttospeech synthesize: %w", err)
	}
	return resp.GetAudioContent(), nil
}

func (s *ttsService) retry(ctx context.Context, fn func() (*texttospeechpb.SynthesizeSpeechResponse, error)) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	backoff := 500 * time.Millisecond
	var last error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == s.maxRetries {
			break
		}
		s.log.Warn("Synthesis attempt failed, retrying", "attempt", attempt, "code", code.String())
		time.Sleep(backoff)
		backoff *= 2
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
	}
	return nil, last
}
