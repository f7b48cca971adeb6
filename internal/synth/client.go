package synth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/anderson0531/sceneflowai-audio/internal/logging"
)

const defaultEndpoint = "wss://voice.sceneflow.app/v1/synthesize"

// WSProvider speaks the backend's duplex websocket task protocol: text
// frames carry JSON control messages, binary frames carry encoded audio.
type WSProvider struct{}

func NewWSProvider() *WSProvider {
	return &WSProvider{}
}

func (p *WSProvider) Start(ctx context.Context, cfg Config) (Stream, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := dial(ctx, normalized)
	if err != nil {
		return nil, err
	}

	stream := &wsStream{
		cfg:       normalized,
		conn:      conn,
		audioBuf:  newBufferedPipe(1 << 20),
		startedCh: make(chan struct{}),
		doneCh:    make(chan struct{}),
		errCh:     make(chan error, 1),
		taskID:    newTaskID(),
	}

	stream.startReceiver()

	if err := stream.sendControl(ctx, actionStart); err != nil {
		_ = conn.Close()
		_ = stream.audioBuf.Close()
		return nil, err
	}

	if err := stream.waitStarted(ctx); err != nil {
		_ = conn.Close()
		_ = stream.audioBuf.Close()
		return nil, err
	}

	return stream, nil
}

const (
	actionStart  = "start-synthesis"
	actionAppend = "append-text"
	actionEnd    = "end-synthesis"

	eventStarted  = "synthesis-started"
	eventComplete = "synthesis-complete"
	eventFailed   = "synthesis-failed"
)

type wsStream struct {
	cfg       Config
	conn      *websocket.Conn
	audioBuf  *bufferedPipe
	writeMu   sync.Mutex
	startedCh chan struct{}
	doneCh    chan struct{}
	errCh     chan error
	taskID    string

	startedOnce sync.Once
	doneOnce    sync.Once
	finishOnce  sync.Once
}

func (s *wsStream) AudioReader() io.ReadCloser {
	return s.audioBuf
}

func (s *wsStream) SampleRate() int {
	if s.cfg.SampleRate > 0 {
		return s.cfg.SampleRate
	}
	return 22050
}

func (s *wsStream) Channels() int {
	// The backend always renders mono PCM.
	return 1
}

func (s *wsStream) WriteTextChunk(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := s.waitStarted(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return s.sendText(ctx, text)
}

func (s *wsStream) Close(ctx context.Context) error {
	var finishErr error
	s.finishOnce.Do(func() {
		finishErr = s.sendControl(ctx, actionEnd)
	})
	if finishErr != nil {
		s.closeWithError(finishErr)
		return finishErr
	}
	select {
	case <-s.doneCh:
		_ = s.conn.Close()
		return s.streamErr()
	case err := <-s.errCh:
		_ = s.conn.Close()
		return err
	case <-ctx.Done():
		_ = s.conn.Close()
		return ctx.Err()
	}
}

func (s *wsStream) waitStarted(ctx context.Context) error {
	select {
	case <-s.startedCh:
		return nil
	case err := <-s.errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *wsStream) sendControl(ctx context.Context, action string) error {
	msg := taskMessage{
		Header: taskHeader{
			Action: action,
			TaskID: s.taskID,
		},
	}
	if action == actionStart {
		msg.Payload = &taskPayload{
			Model:        s.cfg.Model,
			Voice:        s.cfg.Voice,
			LanguageCode: s.cfg.LanguageCode,
			Format:       s.cfg.Format,
			SampleRate:   s.cfg.SampleRate,
			Volume:       s.cfg.Volume,
			Rate:         s.cfg.Rate,
			Pitch:        s.cfg.Pitch,
		}
	}
	return s.writeJSON(msg)
}

func (s *wsStream) sendText(ctx context.Context, text string) error {
	return s.writeJSON(taskMessage{
		Header:  taskHeader{Action: actionAppend, TaskID: s.taskID},
		Payload: &taskPayload{Text: text},
	})
}

func (s *wsStream) writeJSON(msg taskMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	err = s.conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
	return err
}

func (s *wsStream) startReceiver() {
	go func() {
		for {
			messageType, data, err := s.conn.ReadMessage()
			if err != nil {
				s.closeWithError(err)
				return
			}

			if messageType == websocket.BinaryMessage {
				if _, err := s.audioBuf.Write(data); err != nil {
					s.closeWithError(err)
					return
				}
				continue
			}

			if messageType != websocket.TextMessage {
				continue
			}

			var event taskMessage
			if err := json.Unmarshal(data, &event); err != nil {
				s.closeWithError(err)
				return
			}
			if s.handleEvent(event) {
				return
			}
		}
	}()
}

// handleEvent reports whether the receiver loop should exit.
func (s *wsStream) handleEvent(event taskMessage) bool {
	switch event.Header.Event {
	case eventStarted:
		s.startedOnce.Do(func() { close(s.startedCh) })
	case eventComplete:
		s.markDone()
		return true
	case eventFailed:
		err := mapBackendError(event.Header.ErrorCode, event.Header.ErrorMessage)
		s.closeWithError(err)
		return true
	}
	return false
}

func (s *wsStream) closeWithError(err error) {
	s.setErr(err)
	s.markDone()
}

func (s *wsStream) setErr(err error) {
	if err == nil {
		return
	}
	select {
	case s.errCh <- err:
	default:
	}
}

func (s *wsStream) markDone() {
	s.doneOnce.Do(func() {
		_ = s.audioBuf.Close()
		close(s.doneCh)
	})
}

func (s *wsStream) streamErr() error {
	select {
	case err := <-s.errCh:
		return err
	default:
		return nil
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.APIKey == "" {
		return Config{}, errors.New("synthesis api key is required")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = "scenevoice-1"
	}
	if cfg.Voice == "" {
		cfg.Voice = "atlas"
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.Format == "" {
		cfg.Format = "pcm"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 22050
	}
	if cfg.Volume == 0 {
		cfg.Volume = 50
	}
	if cfg.Rate == 0 {
		cfg.Rate = 1
	}
	if cfg.Pitch == 0 {
		cfg.Pitch = 1
	}
	return cfg, nil
}

func dial(ctx context.Context, cfg Config) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", fmt.Sprintf("bearer %s", cfg.APIKey))
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, cfg.Endpoint, header)
	return conn, err
}

type taskMessage struct {
	Header  taskHeader   `json:"header"`
	Payload *taskPayload `json:"payload,omitempty"`
}

type taskHeader struct {
	Action       string `json:"action,omitempty"`
	TaskID       string `json:"task_id,omitempty"`
	Event        string `json:"event,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type taskPayload struct {
	Model        string  `json:"model,omitempty"`
	Voice        string  `json:"voice,omitempty"`
	LanguageCode string  `json:"language_code,omitempty"`
	Format       string  `json:"format,omitempty"`
	SampleRate   int     `json:"sample_rate,omitempty"`
	Volume       int     `json:"volume,omitempty"`
	Rate         float64 `json:"rate,omitempty"`
	Pitch        float64 `json:"pitch,omitempty"`
	Text         string  `json:"text,omitempty"`
}

func mapBackendError(code, message string) error {
	logging.Errorf("synthesis error: code=%s, message=%s", code, message)
	lower := strings.ToLower(code + " " + message)
	switch {
	case strings.Contains(lower, "unauthorized"), strings.Contains(lower, "authentication"):
		return fmt.Errorf("%w: %s", ErrAuth, message)
	case strings.Contains(lower, "invalidparameter"), strings.Contains(lower, "bad request"):
		return fmt.Errorf("%w: %s", ErrBadRequest, message)
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "tempor"):
		return fmt.Errorf("%w: %s", ErrTransient, message)
	}
	if message == "" {
		message = "synthesis task failed"
	}
	return errors.New(message)
}

func newTaskID() string {
	var bytes [16]byte
	if _, err := rand.Read(bytes[:]); err != nil {
		return "fallback-task-id"
	}
	return hex.EncodeToString(bytes[:])
}
