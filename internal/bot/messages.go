package bot

import (
	"fmt"
	"strings"

	"github.com/hanmaru/vocanote/internal/models"
)

func startText(firstName string) string {
	return fmt.Sprintf(`안녕하세요 %s님! 👋

🇰🇷 Vocanote에 오신 것을 환영합니다!

저는 러시아인을 위한 한국어 어휘 학습 도우미입니다.

🔤 사용법:
• 한국어 단어를 입력하면 러시아어 번역과 예문을 제공합니다
• 맞춤법 오류가 있으면 자동으로 교정해드립니다

📚 다른 명령어:
/help - 도움말 보기
/about - 봇 정보

지금 한국어 단어를 입력해보세요! ✨`, firstName)
}

const helpText = `🆘 도움말

1️⃣ 기본 사용법:
   • 한국어 단어를 텍스트로 입력
   • 예: "사랑", "안녕", "고마워"

2️⃣ 제공 기능:
   ✅ 한국어 → 러시아어 번역
   ✅ 발음 표기 (로마자)
   ✅ 맞춤법 자동 교정
   ✅ 활용 예문 3개
   ✅ 문법 설명 (한국어 + 러시아어)

3️⃣ 명령어:
   /start - 봇 시작
   /help - 이 도움말
   /about - 봇 정보

궁금한 한국어 단어를 입력해보세요! 🎯`

const aboutText = `ℹ️ Vocanote 봇 정보

🤖 이름: Vocanote
🎯 목적: 러시아인 한국어 학습 지원

🌟 특징:
• AI 기반 번역 및 예문 생성
• 맞춤법 자동 교정
• 실시간 대화형 학습

즐거운 한국어 학습 되세요! 🇰🇷❤️🇷🇺`

// formatVocabularyHTML renders an entry as a Telegram HTML message. count is
// the user's running word counter shown in the header.
func formatVocabularyHTML(entry *models.VocabularyEntry, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🇰🇷 <b>한국어 단어 #%d</b>\n", count)

	if entry.SpellingCheck != nil && entry.SpellingCheck.HasSpellingError {
		fmt.Fprintf(&b, "\n✏️ <b>맞춤법 교정:</b>\n   %q → %q\n",
			entry.SpellingCheck.OriginalWord, entry.SpellingCheck.CorrectedWord)
		if entry.SpellingCheck.CorrectionNote != "" {
			fmt.Fprintf(&b, "   💡 %s\n", entry.SpellingCheck.CorrectionNote)
		}
	}

	fmt.Fprintf(&b, "\n<b>🔤 단어:</b> %s", entry.OriginalWord)
	fmt.Fprintf(&b, "\n<b>🇷🇺 러시아어:</b> %s", entry.RussianTranslation)
	fmt.Fprintf(&b, "\n<b>🗣️ 발음:</b> %s\n", entry.Pronunciation)

	b.WriteString("\n<b>💬 활용 예문:</b>")
	for i, example := range entry.UsageExamples {
		fmt.Fprintf(&b, "\n\n<b>%d. %s</b>", i+1, example.KoreanSentence)
		fmt.Fprintf(&b, "\n   🇷🇺 %s", example.RussianTranslation)
		if example.GrammarNote != "" {
			fmt.Fprintf(&b, "\n   📝 %s", example.GrammarNote)
		}
		if example.GrammarNoteRussian != "" {
			fmt.Fprintf(&b, "\n   📝🇷🇺 %s", example.GrammarNoteRussian)
		}
		if example.Context != "" {
			fmt.Fprintf(&b, "\n   🎯 <i>%s</i>", example.Context)
		}
	}

	b.WriteString("\n\n🌟 새로운 단어를 입력하거나 /help를 확인하세요!")
	return b.String()
}
