package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vantage-backend/internal/llm"
)

const disclosureExcerptLimit = 2000

const patentabilityPromptTemplate = `Analyze if this invention disclosure is PATENTABLE or just PUBLISHABLE research.

PATENTABLE inventions have:
- Specific device design, process steps, or method
- Industrial application (can be manufactured/used)
- Technical details (numbers, materials, configurations)

PUBLISHABLE-ONLY research:
- Only theory or experimental results
- No specific implementation
- Just observations or discoveries

Disclosure (first %d chars):
%s

Respond with ONLY valid JSON:
{
    "isPatentable": true or false,
    "confidence": 0-100,
    "reasoning": "brief explanation",
    "missingElements": ["element1", "element2"],
    "recommendations": ["add specific device details", "define manufacturing process"]
}

DO NOT include any text before or after the JSON.`

const claimsPromptTemplate = `Extract the key elements of this invention disclosure. Respond with ONLY valid JSON:
{
    "title": "short invention title",
    "background": "one paragraph of background",
    "innovations": ["innovation 1", "innovation 2"],
    "keywords": ["keyword1", "keyword2"],
    "ipcClassifications": ["G06F", "H01M10/05"],
    "technicalField": "field of the invention"
}

Extract 5-10 keywords suitable for patent search and up to 3 IPC classification codes.

Disclosure (first %d chars):
%s

DO NOT include any text before or after the JSON.`

// AssessPatentability asks the LLM whether the disclosure describes a
// patentable invention or publishable-only research.
func AssessPatentability(ctx context.Context, client llm.Client, documentText string) (PatentabilityAssessment, error) {
	prompt := fmt.Sprintf(patentabilityPromptTemplate, disclosureExcerptLimit, excerpt(documentText))

	raw, err := client.Generate(ctx, prompt, llm.GenerateOptions{MaxTokens: 500, Temperature: 0.1, JSONOnly: true})
	if err != nil {
		return PatentabilityAssessment{}, fmt.Errorf("patentability assessment: %w", err)
	}

	var out PatentabilityAssessment
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return PatentabilityAssessment{}, fmt.Errorf("parse patentability response: %w", err)
	}
	return out, nil
}

// ExtractClaims pulls title, innovations, keywords and IPC codes from
// the disclosure text.
func ExtractClaims(ctx context.Context, client llm.Client, documentText string) (Claims, error) {
	prompt := fmt.Sprintf(claimsPromptTemplate, disclosureExcerptLimit, excerpt(documentText))

	raw, err := client.Generate(ctx, prompt, llm.GenerateOptions{MaxTokens: 800, Temperature: 0.1, JSONOnly: true})
	if err != nil {
		return Claims{}, fmt.Errorf("claim extraction: %w", err)
	}

	var out Claims
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return Claims{}, fmt.Errorf("parse claims response: %w", err)
	}
	if len(out.Keywords) == 0 && len(out.Innovations) == 0 {
		return Claims{}, fmt.Errorf("claim extraction returned no keywords or innovations")
	}
	return out, nil
}

func excerpt(text string) string {
	if len(text) > disclosureExcerptLimit {
		return text[:disclosureExcerptLimit]
	}
	return text
}

// cleanJSON strips markdown code fences some models wrap around JSON.
func cleanJSON(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
