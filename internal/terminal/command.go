// Package terminal implements the slash-command grammar and the boxed
// response formatting used by the terminal interface.
package terminal

import (
	"fmt"
	"regexp"
	"strings"
)

// Command types.
const (
	CommandHelp    = "help"
	CommandClear   = "clear"
	CommandMode    = "mode"
	CommandInvalid = "invalid"
)

// Command is the parsed form of a slash-command line. Type "invalid" carries
// the reason in Error.
type Command struct {
	Type  string   `json:"type"`
	Mode  string   `json:"mode,omitempty"`
	Args  []string `json:"args"`
	Error string   `json:"error,omitempty"`
}

const maxCommandLength = 100

// commandPattern: slash, then lowercase-letter tokens separated by whitespace.
// Any uppercase, digit, or punctuation anywhere makes the line invalid.
var commandPattern = regexp.MustCompile(`^/[a-z]+(\s+[a-z]+)*$`)

var validModes = map[string]bool{"korean": true, "russian": true, "auto": true}

// Parse classifies a terminal input line. It returns nil when the line is not
// a command at all (no leading slash) — distinct from an invalid command.
func Parse(text string) *Command {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, "/") {
		return nil
	}
	if len([]rune(clean)) > maxCommandLength {
		return &Command{Type: CommandInvalid, Error: "명령어가 너무 깁니다"}
	}
	if !commandPattern.MatchString(clean) {
		return &Command{Type: CommandInvalid, Error: "명령어에 허용되지 않는 문자가 포함되어 있습니다"}
	}

	parts := strings.Fields(clean)
	command := parts[0]
	args := parts[1:]

	switch command {
	case "/help":
		if len(args) > 0 {
			return &Command{Type: CommandInvalid, Error: "/help 명령어는 추가 인자를 받지 않습니다"}
		}
		return &Command{Type: CommandHelp, Args: []string{}}
	case "/clear":
		if len(args) > 0 {
			return &Command{Type: CommandInvalid, Error: "/clear 명령어는 추가 인자를 받지 않습니다"}
		}
		return &Command{Type: CommandClear, Args: []string{}}
	case "/mode":
		if len(args) != 1 {
			return &Command{Type: CommandInvalid, Error: "/mode 명령어는 정확히 하나의 인자가 필요합니다"}
		}
		if !validModes[args[0]] {
			return &Command{Type: CommandInvalid, Error: "올바른 모드를 입력해주세요: korean, russian, auto"}
		}
		return &Command{Type: CommandMode, Mode: args[0], Args: args}
	case "/history", "/stats":
		// Reserved; rejected distinctly from unknown commands.
		return &Command{Type: CommandInvalid, Error: fmt.Sprintf("%s 명령어는 아직 구현되지 않았습니다", command)}
	default:
		return &Command{Type: CommandInvalid, Error: fmt.Sprintf("알 수 없는 명령어: %s", command)}
	}
}
