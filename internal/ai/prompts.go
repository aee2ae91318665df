package ai

import (
	"fmt"
	"strings"
)

const noExistingWords = "없음"

const creativeEntryPrompt = `당신은 연인들을 위한 창의적인 작가입니다.
연인들이 서로에게 사용할 수 있는 귀엽고 새로운 애칭이나 표현(사랑방언)을 추천해주세요.
이미 존재하는 단어가 아닌, 당신이 새롭게 창조한 단어여야 합니다.
단어와 그 의미를 JSON 형식으로 제공해주세요.
의미는 왜 그런 단어가 만들어졌는지 설명하는 1~2문장의 짧은 글이어야 합니다.

예시:
{
  "word": "뽀송구름",
  "meaning": "나를 볼 때마다 뽀송한 구름처럼 행복하고 포근한 기분을 느끼게 해준다는 의미."
}`

const analysisPromptFormat = `당신은 연인의 대화 내용을 분석하여 그들만의 특별한 애칭이나 표현(사랑방언)을 찾아내는 언어 분석 전문가입니다.
주어진 카카오톡 대화 내용에서 연인들이 자주 사용하거나 특별한 의미를 부여하는 단어나 구절을 찾아주세요.
이미 사전에 등록된 단어는 제외해야 합니다.

분석 기준:
1. 일반적이지 않은 독특한 애칭 (예: "우리 빵실이", "뽀짝이")
2. 둘만의 사건이나 추억과 관련된 단어 (예: "제주도 똥돼지", "첫눈 와플")
3. 서로의 특징을 묘사하는 귀여운 표현 (예: "말랑콩떡", "햇살버튼")
4. 오타나 귀여운 말투에서 파생된 단어 (예: "해쪄염", "보고시포")

결과는 JSON 배열로 반환해주세요. 각 객체는 'word'와 'meaning'을 포함해야 합니다.
'meaning'은 어떤 대화 맥락에서 이 단어가 나왔는지, 어떤 의미를 가지는지 1~2 문장으로 요약해주세요.
찾아낸 단어가 없다면 빈 배열 []을 반환하세요.

---
이미 등록된 단어 목록 (분석에서 제외):
%s
---

---
분석할 대화 내용:
%s
---`

func analysisPrompt(chatText string, exclude []string) string {
	words := make([]string, 0, len(exclude))
	for _, w := range exclude {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	list := noExistingWords
	if len(words) > 0 {
		list = strings.Join(words, ", ")
	}
	return fmt.Sprintf(analysisPromptFormat, list, chatText)
}
