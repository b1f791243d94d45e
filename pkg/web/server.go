// Package web serves the conversation dashboard: REST snapshots of the
// live session plus a websocket feed of state changes, transcripts,
// replies, and events. The dashboard is a mirror of the loop, never a
// controller.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-banter/pkg/conversation"
	"github.com/teslashibe/go-banter/pkg/events"
	"github.com/teslashibe/go-banter/pkg/hub"
	"github.com/teslashibe/go-banter/pkg/protocol"
)

// shutdownTimeout bounds the graceful drain when the context ends.
const shutdownTimeout = 2 * time.Second

// Server is the read-only dashboard server.
type Server struct {
	app    *fiber.App
	hub    *hub.Hub
	loop   *conversation.Loop
	events *events.Recorder
	logger *slog.Logger
}

// NewServer wires the dashboard around a conversation loop. The events
// recorder may be nil; /api/events then serves an empty list.
func NewServer(loop *conversation.Loop, rec *events.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		hub:    hub.New(logger),
		loop:   loop,
		events: rec,
		logger: logger.With("component", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "banter dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/healthz", s.handleHealthz)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/history", s.handleHistory)
	api.Get("/events", s.handleEvents)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWS))

	s.app = app
	return s
}

// Run serves addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	hctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.hub.Run(hctx)

	errc := make(chan error, 1)
	go func() { errc <- s.app.Listen(addr) }()
	s.logger.Info("dashboard listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

// Publish translates a session event into a feed frame and broadcasts
// it. Wire it to the event recorder's notify hook; it never blocks.
func (s *Server) Publish(e events.Event) {
	msg, err := translate(e)
	if err != nil {
		s.logger.Warn("event translation failed", "kind", e.Kind, "error", err)
		return
	}
	frame, err := msg.Bytes()
	if err != nil {
		s.logger.Warn("frame encoding failed", "kind", e.Kind, "error", err)
		return
	}
	s.hub.Broadcast(frame)
}

// PublishMetrics broadcasts one turn's latency figures. Wire it to the
// metrics collector's update hook.
func (s *Server) PublishMetrics(m conversation.Metrics) {
	msg, err := protocol.NewMetricsMessage(
		m.STTLatency, m.LLMLatency, m.TTSLatency, m.TotalLatency,
		s.loop.Metrics().Turns(),
	)
	if err != nil {
		return
	}
	frame, err := msg.Bytes()
	if err != nil {
		return
	}
	s.hub.Broadcast(frame)
}

// ClientCount reports connected dashboard clients.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// translate maps session events onto typed feed frames. State changes,
// transcripts, and replies get dedicated frame types; everything else
// rides in a generic event frame.
func translate(e events.Event) (*protocol.Message, error) {
	switch e.Kind {
	case events.KindSystem:
		if e.Fields["system_event"] == "state_change" {
			details, _ := e.Fields["details"].(map[string]any)
			from, _ := details["from"].(string)
			to, _ := details["to"].(string)
			return protocol.NewStateMessage(from, to)
		}
	case events.KindTranscription:
		text, _ := e.Fields["transcribed_text"].(string)
		return protocol.NewTranscriptMessage(text)
	case events.KindAIResponse:
		input, _ := e.Fields["input_text"].(string)
		reply, _ := e.Fields["ai_response"].(string)
		intent, _ := e.Fields["intent"].(string)
		return protocol.NewReplyMessage(input, reply, intent)
	}
	return protocol.NewEventMessage(e)
}
