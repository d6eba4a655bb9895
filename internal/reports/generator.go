package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"vantage-backend/internal/orchestrate"
	"vantage-backend/internal/patents"
)

const maxPatentsInReport = 10

// Data is everything the report renders for one completed analysis.
type Data struct {
	AnalysisID     string
	Title          string
	NoveltyScore   float64
	Recommendation string
	Reasoning      string
	Patentability  *orchestrate.PatentabilityAssessment
	Claims         *orchestrate.Claims
	Patents        []patents.Patent
	CreatedAt      time.Time
}

// Generator renders novelty analysis reports as PDF files.
type Generator struct {
	Dir string
}

// Generate writes the report to <dir>/<analysis-id>.pdf and returns the
// file name.
func (g *Generator) Generate(data Data) (string, error) {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure reports directory: %w", err)
	}

	fileName := data.AnalysisID + ".pdf"
	outPath := filepath.Join(g.Dir, fileName)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Patent Novelty Analysis", false)
	pdf.SetAuthor("VANTAGE", false)
	pdf.AddPage()

	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = "Untitled disclosure"
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, "Patent Novelty Analysis", "", "L", false)
	pdf.SetFont("Helvetica", "", 13)
	pdf.MultiCell(0, 7, title, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Analysis %s", data.AnalysisID))
	pdf.Ln(5)
	if !data.CreatedAt.IsZero() {
		pdf.Cell(0, 5, fmt.Sprintf("Submitted %s", data.CreatedAt.Format("2006-01-02 15:04 MST")))
		pdf.Ln(5)
	}
	pdf.Ln(6)

	g.writeVerdict(pdf, data)
	g.writeReasoning(pdf, data.Reasoning)
	g.writePatentability(pdf, data.Patentability)
	g.writeClaims(pdf, data.Claims)
	g.writePatents(pdf, data.Patents)

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return "", fmt.Errorf("write report pdf: %w", err)
	}
	return fileName, nil
}

func (g *Generator) writeVerdict(pdf *gofpdf.Fpdf, data Data) {
	r, gr, b := recommendationColor(data.Recommendation)
	pdf.SetFillColor(r, gr, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 14)
	banner := fmt.Sprintf("Novelty score: %.1f / 100    Recommendation: %s", data.NoveltyScore, recommendationLabel(data.Recommendation))
	pdf.CellFormat(0, 12, banner, "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
}

func (g *Generator) writeReasoning(pdf *gofpdf.Fpdf, reasoning string) {
	if strings.TrimSpace(reasoning) == "" {
		return
	}
	writeSectionTitle(pdf, "Assessment")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, reasoning, "", "L", false)
	pdf.Ln(6)
}

func (g *Generator) writePatentability(pdf *gofpdf.Fpdf, pa *orchestrate.PatentabilityAssessment) {
	if pa == nil {
		return
	}
	writeSectionTitle(pdf, "Patentability")
	pdf.SetFont("Helvetica", "", 11)
	verdict := "Not patentable"
	if pa.IsPatentable {
		verdict = "Patentable"
	}
	pdf.MultiCell(0, 6, fmt.Sprintf("%s (confidence %.0f%%)", verdict, pa.Confidence), "", "L", false)
	for _, el := range pa.MissingElements {
		pdf.MultiCell(0, 6, "- Missing: "+el, "", "L", false)
	}
	pdf.Ln(6)
}

func (g *Generator) writeClaims(pdf *gofpdf.Fpdf, claims *orchestrate.Claims) {
	if claims == nil || len(claims.Innovations) == 0 {
		return
	}
	writeSectionTitle(pdf, "Key innovations")
	pdf.SetFont("Helvetica", "", 11)
	for _, inn := range claims.Innovations {
		pdf.MultiCell(0, 6, "- "+inn, "", "L", false)
	}
	if len(claims.Keywords) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, "Keywords: "+strings.Join(claims.Keywords, ", "), "", "L", false)
	}
	pdf.Ln(6)
}

func (g *Generator) writePatents(pdf *gofpdf.Fpdf, matches []patents.Patent) {
	if len(matches) == 0 {
		return
	}
	if len(matches) > maxPatentsInReport {
		matches = matches[:maxPatentsInReport]
	}

	writeSectionTitle(pdf, "Most similar prior art")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(35, 7, "Patent", "1", 0, "L", true, 0, "")
	pdf.CellFormat(110, 7, "Title", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Similarity", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range matches {
		title := p.Title
		if len(title) > 70 {
			title = title[:67] + "..."
		}
		pdf.CellFormat(35, 7, p.PatentID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(110, 7, title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.0f%%", p.SimilarityScore), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func writeSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func recommendationLabel(rec string) string {
	switch rec {
	case orchestrate.RecommendationPursue:
		return "Pursue patent protection"
	case orchestrate.RecommendationReconsider:
		return "Reconsider with narrow claims"
	case orchestrate.RecommendationReject:
		return "Do not pursue - consider publication"
	default:
		return rec
	}
}

func recommendationColor(rec string) (int, int, int) {
	switch rec {
	case orchestrate.RecommendationPursue:
		return 46, 125, 50
	case orchestrate.RecommendationReconsider:
		return 245, 124, 0
	default:
		return 198, 40, 40
	}
}
