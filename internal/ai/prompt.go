package ai

import "fmt"

// systemPrompt frames the model as a language teacher for Russian speakers
// learning Korean. The prompt text is the product here; edit with care.
const systemPrompt = `당신은 러시아인이 한국어를 배우는 것을 도와주는 전문 언어 교사입니다.

사용자가 한국어 단어를 입력하면, 다음을 제공해주세요:
1. 정확한 러시아어 번역
2. 한국어 발음 표기 (로마자)
3. 일상 대화에서 사용할 수 있는 3개의 활용 예제

각 활용 예제는:
- 기본형 + 수식어 조합
- 문법 변화형 (과거/현재/미래, 높임말/반말)
- 상황별 활용 (전화, 메시지, 대면 대화)

각 예제마다 러시아어 번역과 문법 설명(한국어와 러시아어 둘 다), 사용 상황을 포함해주세요.
맞춤법 오류가 있으면 교정하고 spelling_check 필드에 기록해주세요.
응답은 반드시 JSON 형식으로만 작성해주세요.`

// buildPrompt is the per-request prompt. The JSON skeleton keeps the model
// honest about field names even with structured output enabled.
func buildPrompt(word string) string {
	return fmt.Sprintf(`한국어 단어: %q

이 단어에 대해 다음 JSON 형식으로 응답해주세요:

{
    "original_word": %q,
    "russian_translation": "러시아어 번역",
    "pronunciation": "[발음표기]",
    "spelling_check": {
        "original_word": %q,
        "corrected_word": "교정된 단어",
        "has_spelling_error": false,
        "correction_note": "교정 설명 (오류가 있을 때만)"
    },
    "usage_examples": [
        {
            "korean_sentence": "예문",
            "russian_translation": "러시아어 번역",
            "grammar_note": "문법 설명",
            "grammar_note_russian": "грамматическое объяснение",
            "context": "사용 상황"
        }
    ]
}

usage_examples는 정확히 3개를 작성하고, 일상 대화에서 자주 쓰이는 자연스러운 예문으로 해주세요.`,
		word, word, word)
}
