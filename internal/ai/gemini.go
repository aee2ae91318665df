package ai

import "strings"

type (
	generateRequest struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generationConfig struct {
		ResponseMimeType string   `json:"responseMimeType,omitempty"`
		ResponseSchema   *schema  `json:"responseSchema,omitempty"`
		Temperature      *float64 `json:"temperature,omitempty"`
	}

	schema struct {
		Type        string             `json:"type"`
		Description string             `json:"description,omitempty"`
		Properties  map[string]*schema `json:"properties,omitempty"`
		Items       *schema            `json:"items,omitempty"`
		Required    []string           `json:"required,omitempty"`
	}

	generateResponse struct {
		Candidates []struct {
			Content      content `json:"content"`
			FinishReason string  `json:"finishReason,omitempty"`
		} `json:"candidates"`
	}
)

func userContent(text string) content {
	return content{Role: "user", Parts: []part{{Text: text}}}
}

func entrySchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"word":    {Type: "STRING", Description: "새로운 한국어 사랑방언 단어"},
			"meaning": {Type: "STRING", Description: "단어의 한국어 의미"},
		},
		Required: []string{"word", "meaning"},
	}
}

func entryListSchema() *schema {
	return &schema{
		Type: "ARRAY",
		Items: &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"word":    {Type: "STRING"},
				"meaning": {Type: "STRING"},
			},
			Required: []string{"word", "meaning"},
		},
	}
}

// text joins the parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
