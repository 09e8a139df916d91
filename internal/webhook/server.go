// Package webhook receives Feishu event callbacks: the one-time
// url_verification handshake and im.message.receive_v1 text messages,
// which it routes through the command handler and answers via the
// notifier's reply channel.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

var mentionPat = regexp.MustCompile(`@_user_\d+`)

// Commander executes one chat command and returns the reply text.
type Commander interface {
	Handle(ctx context.Context, text string) string
}

// Replier answers an inbound message. Satisfied by notify.Notifier.
type Replier interface {
	Reply(ctx context.Context, messageID, text string) error
}

// Handler is the Feishu event endpoint. Mount it on the bot's callback path.
type Handler struct {
	commands    Commander
	replier     Replier
	verifyToken string // empty disables token checks
	logger      *slog.Logger
}

// NewHandler creates the event handler. A non-empty verifyToken must
// match the token Feishu attaches to every callback.
func NewHandler(commands Commander, replier Replier, verifyToken string, logger *slog.Logger) *Handler {
	return &Handler{commands: commands, replier: replier, verifyToken: verifyToken, logger: logger}
}

type event struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Token     string `json:"token"` // v1 shape, url_verification
	Header    struct {
		EventType string `json:"event_type"`
		Token     string `json:"token"` // v2 shape, message events
	} `json:"header"`
	Event struct {
		Message struct {
			MessageID   string `json:"message_id"`
			MessageType string `json:"message_type"`
			Content     string `json:"content"`
		} `json:"message"`
	} `json:"event"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ev event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.logger.Warn("bad event payload", slog.String("error", err.Error()))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if h.verifyToken != "" {
		token := ev.Token
		if token == "" {
			token = ev.Header.Token
		}
		if token != h.verifyToken {
			h.logger.Warn("event token mismatch, rejecting")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	// URL verification handshake: echo the challenge.
	if ev.Type == "url_verification" {
		writeJSON(w, map[string]string{"challenge": ev.Challenge})
		return
	}

	if ev.Header.EventType == "im.message.receive_v1" && ev.Event.Message.MessageType == "text" {
		h.handleMessage(r.Context(), ev)
	}

	writeJSON(w, map[string]int{"code": 0})
}

func (h *Handler) handleMessage(ctx context.Context, ev event) {
	var content struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(ev.Event.Message.Content), &content); err != nil {
		h.logger.Warn("bad message content", slog.String("error", err.Error()))
		return
	}

	text := strings.TrimSpace(mentionPat.ReplaceAllString(content.Text, ""))
	h.logger.Info("command received", slog.String("text", text))

	reply := h.commands.Handle(ctx, text)
	if reply == "" {
		return
	}
	if err := h.replier.Reply(ctx, ev.Event.Message.MessageID, reply); err != nil {
		h.logger.Error("reply failed",
			slog.String("message_id", ev.Event.Message.MessageID),
			slog.String("error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
