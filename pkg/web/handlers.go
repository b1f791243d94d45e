package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-banter/pkg/events"
	"github.com/teslashibe/go-banter/pkg/hub"
)

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	State         string         `json:"state"`
	Turns         int            `json:"turns"`
	HistoryTurns  int            `json:"history_turns"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Failures      map[string]int `json:"failures"`
	Clients       int            `json:"clients"`
	Latency       LatencySummary `json:"latency"`
}

// LatencySummary holds average per-stage latencies in milliseconds.
type LatencySummary struct {
	STTMs   int64 `json:"stt_ms"`
	LLMMs   int64 `json:"llm_ms"`
	TTSMs   int64 `json:"tts_ms"`
	TotalMs int64 `json:"total_ms"`
}

// TurnEntry is one history turn in the /api/history payload.
type TurnEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	var uptime int64
	if started := s.loop.StartedAt(); !started.IsZero() {
		uptime = int64(time.Since(started).Seconds())
	}

	failures := make(map[string]int)
	for stage, count := range s.loop.FailureCounts() {
		failures[string(stage)] = count
	}

	avg := s.loop.Metrics().Average()
	return c.JSON(StatusResponse{
		State:         s.loop.State().String(),
		Turns:         s.loop.Turns(),
		HistoryTurns:  len(s.loop.History()),
		UptimeSeconds: uptime,
		Failures:      failures,
		Clients:       s.hub.ClientCount(),
		Latency: LatencySummary{
			STTMs:   avg.STTLatency.Milliseconds(),
			LLMMs:   avg.LLMLatency.Milliseconds(),
			TTSMs:   avg.TTSLatency.Milliseconds(),
			TotalMs: avg.TotalLatency.Milliseconds(),
		},
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	turns := s.loop.History()
	entries := make([]TurnEntry, 0, len(turns))
	for _, t := range turns {
		entries = append(entries, TurnEntry{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}
	return c.JSON(entries)
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	if s.events == nil {
		return c.JSON([]events.Event{})
	}
	n := c.QueryInt("n", 50)
	return c.JSON(s.events.Recent(n))
}

func (s *Server) handleWS(conn *websocket.Conn) {
	client := hub.NewClient(s.hub, conn)
	s.logger.Debug("dashboard client connected", "remote", conn.RemoteAddr())
	client.Run()
}
