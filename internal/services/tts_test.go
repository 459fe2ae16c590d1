package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
)

type fakeSynthesizer struct {
	audio []byte
	err   error
	calls int
	text  string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls++
	f.text = text
	return f.audio, f.err
}

func TestSynthesizeSpeech_Success(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes")}
	svc := NewTTSService(logger.NewNop(), synth)

	audioURL, err := svc.SynthesizeSpeech(context.Background(), "こんにちは")
	require.NoError(t, err)
	require.Equal(t, "data:audio/mp3;base64,"+base64.StdEncoding.EncodeToString([]byte("mp3-bytes")), audioURL)
	require.Equal(t, 1, synth.calls)
	require.Equal(t, "こんにちは", synth.text)
}

func TestSynthesizeSpeech_EmptyText(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte("mp3")}
	svc := NewTTSService(logger.NewNop(), synth)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.SynthesizeSpeech(context.Background(), text)
		require.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	}
	require.Zero(t, synth.calls)
}

func TestSynthesizeSpeech_TextTooLong(t *testing.T) {
	synth := &fakeSynthesizer{audio: []byte("mp3")}
	svc := NewTTSService(logger.NewNop(), synth)

	// The cap counts runes, not bytes: 5000 multibyte characters are fine.
	atLimit := strings.Repeat("あ", 5000)
	_, err := svc.SynthesizeSpeech(context.Background(), atLimit)
	require.NoError(t, err)

	_, err = svc.SynthesizeSpeech(context.Background(), atLimit+"あ")
	require.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	require.Equal(t, 1, synth.calls)
}

func TestSynthesizeSpeech_NotConfigured(t *testing.T) {
	svc := NewTTSService(logger.NewNop(), nil)

	_, err := svc.SynthesizeSpeech(context.Background(), "こんにちは")
	require.Equal(t, http.StatusServiceUnavailable, apierr.StatusOf(err))
}

func TestSynthesizeSpeech_ProviderFailure(t *testing.T) {
	svc := NewTTSService(logger.NewNop(), &fakeSynthesizer{err: errors.New("quota exceeded")})
	_, err := svc.SynthesizeSpeech(context.Background(), "こんにちは")
	require.Equal(t, http.StatusServiceUnavailable, apierr.StatusOf(err))

	svc = NewTTSService(logger.NewNop(), &fakeSynthesizer{audio: []byte{}})
	_, err = svc.SynthesizeSpeech(context.Background(), "こんにちは")
	require.Equal(t, http.StatusServiceUnavailable, apierr.StatusOf(err))
}
