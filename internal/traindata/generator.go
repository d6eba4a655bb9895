// Package traindata reverse-engineers real patents into synthetic
// invention disclosures so the analysis pipeline can be validated
// against known ground truth. Each source patent yields a pair of
// examples: one dated before the patent's priority date (novel, no
// prior art expected) and one dated after publication (blocked by the
// source patent itself).
package traindata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vantage-backend/internal/llm"
	"vantage-backend/internal/shared/telemetry"
)

const dateLayout = "2006-01-02"

// SourcePatent is one record of the source_patents.json input file.
type SourcePatent struct {
	ID              string   `json:"id"`
	PatentNumber    string   `json:"patent_number"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	Claims          []string `json:"claims"`
	PriorityDate    string   `json:"priority_date"`
	PublicationDate string   `json:"publication_date"`
}

// missingFields lists the required fields the patent lacks.
func (p SourcePatent) missingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"id", p.ID},
		{"title", p.Title},
		{"abstract", p.Abstract},
		{"priority_date", p.PriorityDate},
		{"publication_date", p.PublicationDate},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Label is the ground truth attached to one example.
type Label struct {
	IsNovel         bool   `json:"isNovel"`
	ExpectedMatches int    `json:"expectedMatches"`
	BlockingPatent  string `json:"blockingPatent,omitempty"`
	Reasoning       string `json:"reasoning"`
}

// Metadata records provenance for a generated example.
type Metadata struct {
	SourcePatent    string `json:"source_patent"`
	PatentNumber    string `json:"patent_number"`
	PriorityDate    string `json:"priority_date"`
	PublicationDate string `json:"publication_date"`
	Type            string `json:"type"`
}

// Example is one labelled training record.
type Example struct {
	Text       string   `json:"text"`
	SearchDate string   `json:"search_date"`
	Label      Label    `json:"label"`
	Metadata   Metadata `json:"metadata"`
}

// Pair groups the positive and negative examples built from one patent.
type Pair struct {
	Positive Example
	Negative Example
}

// LoadPatents reads and validates the source patent file. Patents with
// missing required fields are skipped with a warning.
func LoadPatents(path string) ([]SourcePatent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patents file: %w", err)
	}

	var patents []SourcePatent
	if err := json.Unmarshal(data, &patents); err != nil {
		return nil, fmt.Errorf("parse patents file: %w", err)
	}

	valid := make([]SourcePatent, 0, len(patents))
	for _, p := range patents {
		if missing := p.missingFields(); len(missing) > 0 {
			telemetry.Warn("traindata.patent_skipped", map[string]any{
				"patent_id":      p.ID,
				"missing_fields": missing,
			})
			continue
		}
		valid = append(valid, p)
	}
	return valid, nil
}

const disclosurePromptTemplate = `Convert this patent into an Invention Disclosure Form as a researcher would write it.

Patent Title: %s
Abstract: %s
Claims: %s

Create an IDF with these sections:

1. TITLE: A descriptive title (not the patent title - make it sound like a research project)

2. BACKGROUND: Describe the problem being solved in 2-3 sentences.
   - What's the current limitation?
   - Why is this important?
   - What gap does this fill?

3. KEY INNOVATIONS: List 3-5 bullet points of what's new.
   - Focus on WHAT is new, not patent claim language
   - Use natural researcher language, not legal terminology
   - Be specific about technical features

4. TECHNICAL DETAILS: Provide specific measurements, materials, process steps.
   - Include numbers, ranges, or specifications mentioned in the patent
   - Describe the device/system/method components
   - Explain how it works

5. ADVANTAGES: List 2-4 benefits over existing solutions.
   - Performance improvements
   - Cost reductions
   - Efficiency gains
   - Novel capabilities

Write in the first person ("we developed", "our approach") as a researcher would.
Use technical language but NOT patent legalese (avoid "comprising", "wherein", "said").`

// Generator builds labelled disclosure pairs from source patents.
type Generator struct {
	LLM llm.Client
}

// DisclosureText rewrites the patent as a researcher-voice disclosure.
// If the model is unavailable it falls back to a plain template so the
// generator still works offline.
func (g *Generator) DisclosureText(ctx context.Context, p SourcePatent) string {
	claims := p.Claims
	if len(claims) > 2 {
		claims = claims[:2]
	}
	claimsJSON, _ := json.Marshal(claims)
	prompt := fmt.Sprintf(disclosurePromptTemplate, p.Title, p.Abstract, claimsJSON)

	text, err := g.LLM.Generate(ctx, prompt, llm.GenerateOptions{MaxTokens: 800, Temperature: 0.5})
	if err != nil {
		telemetry.Warn("traindata.llm_fallback", map[string]any{
			"patent_id": p.ID,
			"error":     err.Error(),
		})
		return fallbackDisclosure(p)
	}
	return text
}

func fallbackDisclosure(p SourcePatent) string {
	background := p.Abstract
	if len(background) > 300 {
		background = background[:300]
	}
	return fmt.Sprintf(`TITLE: %s

BACKGROUND:
%s

KEY INNOVATIONS:
- Novel approach based on patent %s
- Technical advancement in the field
- Improved performance and efficiency

TECHNICAL DETAILS:
See patent abstract for detailed specifications.

ADVANTAGES:
- Improved over prior art
- Cost effective solution
- Scalable implementation
`, p.Title, background, p.ID)
}

// BuildPair creates the positive/negative example pair for one patent.
// The positive example is dated 60 days before the priority date so a
// correct pipeline finds nothing; the negative is dated 90 days after
// publication so the source patent itself blocks it.
func (g *Generator) BuildPair(ctx context.Context, p SourcePatent) Pair {
	text := g.DisclosureText(ctx, p)

	priority, perr := time.Parse(dateLayout, p.PriorityDate)
	publication, puberr := time.Parse(dateLayout, p.PublicationDate)
	if perr != nil || puberr != nil {
		telemetry.Warn("traindata.invalid_dates", map[string]any{"patent_id": p.ID})
		publication = time.Now().UTC()
		priority = publication.AddDate(-1, 0, 0)
	}

	meta := Metadata{
		SourcePatent:    p.ID,
		PatentNumber:    p.PatentNumber,
		PriorityDate:    p.PriorityDate,
		PublicationDate: p.PublicationDate,
	}

	positiveMeta := meta
	positiveMeta.Type = "positive"
	negativeMeta := meta
	negativeMeta.Type = "negative"

	return Pair{
		Positive: Example{
			Text:       text,
			SearchDate: priority.AddDate(0, 0, -60).Format(dateLayout),
			Label: Label{
				IsNovel:         true,
				ExpectedMatches: 0,
				Reasoning:       "Disclosure predates all prior art - no patents should be found",
			},
			Metadata: positiveMeta,
		},
		Negative: Example{
			Text:       text,
			SearchDate: publication.AddDate(0, 0, 90).Format(dateLayout),
			Label: Label{
				IsNovel:         false,
				ExpectedMatches: 1,
				BlockingPatent:  p.PatentNumber,
				Reasoning:       "Source patent should be found as blocking prior art",
			},
			Metadata: negativeMeta,
		},
	}
}

// WriteAll generates pairs for every patent and writes them to outDir
// as pair_NNN_positive.json / pair_NNN_negative.json. It returns the
// number of pairs written; a patent that fails to serialize is skipped.
func (g *Generator) WriteAll(ctx context.Context, patents []SourcePatent, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	written := 0
	for i, p := range patents {
		pair := g.BuildPair(ctx, p)
		prefix := fmt.Sprintf("pair_%03d", i+1)

		if err := writeExample(filepath.Join(outDir, prefix+"_positive.json"), pair.Positive); err != nil {
			telemetry.Error("traindata.write_failed", map[string]any{"patent_id": p.ID, "error": err.Error()})
			continue
		}
		if err := writeExample(filepath.Join(outDir, prefix+"_negative.json"), pair.Negative); err != nil {
			telemetry.Error("traindata.write_failed", map[string]any{"patent_id": p.ID, "error": err.Error()})
			continue
		}
		written++
	}
	return written, nil
}

func writeExample(path string, ex Example) error {
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
