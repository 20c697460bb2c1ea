package terminal

import (
	"fmt"
	"strings"
)

// Client-side animation markers understood by the terminal frontend.
const (
	typingStartMarker = "{{TYPING_START}}"
	typingEndMarker   = "{{TYPING_END}}"
	clearScreenMarker = "{{CLEAR_SCREEN}}"
)

// ExamplePair is one usage example rendered in a translation frame.
type ExamplePair struct {
	Korean  string `json:"korean"`
	Russian string `json:"russian"`
}

// TranslationData is the payload rendered by FormatTranslation.
type TranslationData struct {
	Original      string        `json:"original"`
	Translation   string        `json:"translation"`
	Pronunciation string        `json:"pronunciation,omitempty"`
	Examples      []ExamplePair `json:"examples"`
}

func wrapTyping(s string, typing bool) string {
	if !typing {
		return s
	}
	return typingStartMarker + s + typingEndMarker
}

// FormatHelp renders the command reference frame.
func FormatHelp(typing bool) string {
	help := `
╭─────────────────────────────────────────────────────╮
│                    터미널 명령어                      │
├─────────────────────────────────────────────────────┤
│ /help          - 이 도움말 표시                      │
│ /clear         - 채팅 기록 삭제                      │
│ /mode korean   - 한국어 → 러시아어 모드             │
│ /mode russian  - 러시아어 → 한국어 모드             │
│ /mode auto     - 자동 언어 감지 모드                 │
├─────────────────────────────────────────────────────┤
│ 사용법: 메시지를 입력하면 자동으로 번역됩니다        │
╰─────────────────────────────────────────────────────╯`
	return wrapTyping(help, typing)
}

// FormatClear renders the clear-screen marker.
func FormatClear(typing bool) string {
	return wrapTyping(clearScreenMarker, typing)
}

// FormatModeChange renders the mode-change confirmation frame.
func FormatModeChange(mode string, typing bool) string {
	modeNames := map[string]string{
		"korean":  "한국어 → 러시아어 (korean)",
		"russian": "러시아어 → 한국어 (russian)",
		"auto":    "자동 언어 감지 (auto)",
	}
	name, ok := modeNames[mode]
	if !ok {
		name = mode
	}
	frame := fmt.Sprintf(`
╭─ 모드 변경 ─────────────────────────────────────────╮
│ ✅ %s 모드로 변경되었습니다
╰─────────────────────────────────────────────────────╯`, name)
	return wrapTyping(frame, typing)
}

// FormatError renders an error frame.
func FormatError(errMsg string, typing bool) string {
	if errMsg == "" {
		errMsg = "알 수 없는 오류가 발생했습니다"
	}
	frame := fmt.Sprintf(`
╭─ ERROR ─────────────────────────────────────────────╮
│ ❌ %s
╰─────────────────────────────────────────────────────╯`, errMsg)
	return wrapTyping(frame, typing)
}

// FormatTranslation renders a translation result frame with up to three
// usage examples.
func FormatTranslation(data TranslationData, typing bool) string {
	var b strings.Builder
	b.WriteString("\n╭─ 번역 결과 ─────────────────────────────────────────╮")
	fmt.Fprintf(&b, "\n│ 📝 원문: %s", data.Original)
	fmt.Fprintf(&b, "\n│ 🔄 번역: %s", data.Translation)
	if data.Pronunciation != "" {
		fmt.Fprintf(&b, "\n│ 🔊 발음: %s", data.Pronunciation)
	}
	b.WriteString("\n├─ 활용 예제 ─────────────────────────────────────────┤")
	for i, example := range data.Examples {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "\n│ ✓ %d. %s", i+1, example.Korean)
		fmt.Fprintf(&b, "\n│    → %s", example.Russian)
	}
	b.WriteString("\n╰─────────────────────────────────────────────────────╯")
	return wrapTyping(b.String(), typing)
}
