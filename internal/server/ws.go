package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/ai"
	"github.com/hanmaru/vocanote/internal/langdetect"
	"github.com/hanmaru/vocanote/internal/terminal"
)

// Client → server message types.
const (
	wsTypeTranslate = "translate"
	wsTypeCommand   = "command"
	wsTypeGetStats  = "get_stats"
)

// Server → client message types.
const (
	wsTypeConnection    = "connection"
	wsTypeTranslation   = "translation"
	wsTypeCommandResult = "command_result"
	wsTypeStats         = "stats"
	wsTypeError         = "error"
)

type wsClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Mode string `json:"mode,omitempty"`
}

type wsServerMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// handleTerminalWS runs the per-connection terminal loop. The translation
// mode is connection state: "korean", "russian" and "auto" set it, "session"
// (or omission) reuses the current value. A malformed client message yields
// an error response without closing the connection.
func (s *Server) handleTerminalWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Info("terminal connected", zap.String("remote", conn.RemoteAddr().String()))
	s.wsSend(conn, wsServerMessage{
		Type:    wsTypeConnection,
		Message: "터미널에 연결되었습니다. /help 명령어로 사용법을 확인하세요.",
	})

	mode := langdetect.ModeAuto
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("terminal disconnected", zap.String("remote", conn.RemoteAddr().String()))
			return
		}
		var msg wsClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.wsSend(conn, wsServerMessage{Type: wsTypeError, Error: "메시지 형식이 올바르지 않습니다"})
			continue
		}
		switch msg.Type {
		case wsTypeTranslate:
			mode = s.wsTranslate(r.Context(), conn, msg, mode)
		case wsTypeCommand:
			mode = s.wsCommand(conn, msg.Text, mode)
		case wsTypeGetStats:
			s.wsStats(conn)
		case "":
			s.wsSend(conn, wsServerMessage{Type: wsTypeError, Error: "type 필드가 필요합니다"})
		default:
			s.wsSend(conn, wsServerMessage{Type: wsTypeError, Error: "알 수 없는 메시지 타입: " + msg.Type})
		}
	}
}

// wsTranslate handles one translate request and returns the (possibly
// updated) connection mode.
func (s *Server) wsTranslate(ctx context.Context, conn *websocket.Conn, msg wsClientMessage, mode langdetect.Mode) langdetect.Mode {
	switch msg.Mode {
	case "korean":
		mode = langdetect.ModeKorean
	case "russian":
		mode = langdetect.ModeRussian
	case "auto":
		mode = langdetect.ModeAuto
	case "", "session":
		// Keep the connection's current mode.
	default:
		s.wsSend(conn, wsServerMessage{Type: wsTypeError, Error: "알 수 없는 번역 모드: " + msg.Mode})
		return mode
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		s.wsSend(conn, wsServerMessage{Type: wsTypeError, Error: "번역할 텍스트를 입력해주세요"})
		return mode
	}

	forced := mode
	if forced == langdetect.ModeAuto {
		forced = ""
	}
	detection := langdetect.Detect(text, forced)
	if detection.Language == langdetect.LanguageUnknown || detection.Language == langdetect.LanguageMixed {
		s.wsSend(conn, wsServerMessage{
			Type:  wsTypeError,
			Error: "지원되지 않는 언어이거나 혼합된 언어입니다. 한국어 또는 러시아어로 입력해주세요.",
		})
		return mode
	}

	entry := ai.GenerateOrFallback(ctx, s.generator, text, s.logger)
	examples := make([]terminal.ExamplePair, 0, len(entry.UsageExamples))
	for _, example := range entry.UsageExamples {
		examples = append(examples, terminal.ExamplePair{
			Korean:  example.KoreanSentence,
			Russian: example.RussianTranslation,
		})
	}
	data := terminal.TranslationData{
		Original:      entry.OriginalWord,
		Translation:   entry.RussianTranslation,
		Pronunciation: entry.Pronunciation,
		Examples:      examples,
	}
	s.wsSend(conn, wsServerMessage{
		Type:    wsTypeTranslation,
		Message: terminal.FormatTranslation(data, true),
		Data:    data,
	})
	return mode
}

// wsCommand parses and executes one slash command and returns the (possibly
// updated) connection mode.
func (s *Server) wsCommand(conn *websocket.Conn, text string, mode langdetect.Mode) langdetect.Mode {
	cmd := terminal.Parse(text)
	if cmd == nil {
		s.wsSend(conn, wsServerMessage{Type: wsTypeError, Error: "명령어는 /로 시작해야 합니다"})
		return mode
	}
	switch cmd.Type {
	case terminal.CommandHelp:
		s.wsSend(conn, wsServerMessage{Type: wsTypeCommandResult, Message: terminal.FormatHelp(true), Data: cmd})
	case terminal.CommandClear:
		s.wsSend(conn, wsServerMessage{Type: wsTypeCommandResult, Message: terminal.FormatClear(true), Data: cmd})
	case terminal.CommandMode:
		mode = langdetect.Mode(cmd.Mode)
		s.wsSend(conn, wsServerMessage{Type: wsTypeCommandResult, Message: terminal.FormatModeChange(cmd.Mode, true), Data: cmd})
	default:
		s.wsSend(conn, wsServerMessage{Type: wsTypeCommandResult, Message: terminal.FormatError(cmd.Error, true), Data: cmd})
	}
	return mode
}

func (s *Server) wsStats(conn *websocket.Conn) {
	s.wsSend(conn, wsServerMessage{
		Type: wsTypeStats,
		Data: map[string]interface{}{
			"vocabulary": map[string]int{"total_entries": s.vocab.Count()},
			"chat":       s.chats.Stats(),
			"bookmarks":  s.bookmarks.Stats(),
		},
	})
}

func (s *Server) wsSend(conn *websocket.Conn, msg wsServerMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Warn("websocket write failed", zap.Error(err))
	}
}
