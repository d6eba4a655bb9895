// Command traingen reverse-engineers source patents into synthetic
// invention disclosures and writes labelled training pairs for
// validating the analysis pipeline.
//
// It reads training_data/patents/source_patents.json and writes
// training_data/pairs/pair_NNN_{positive,negative}.json. Credentials
// come from the environment (LLM_API_KEY); without them a template
// fallback keeps the run working offline.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"vantage-backend/internal/llm"
	"vantage-backend/internal/shared/config"
	"vantage-backend/internal/traindata"
)

const (
	patentsPath = "training_data/patents/source_patents.json"
	pairsDir    = "training_data/pairs"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("traingen: %v", err)
	}
}

func run() error {
	cfg := config.Load()

	fmt.Println("Loading patents from:", patentsPath)
	patents, err := traindata.LoadPatents(patentsPath)
	if err != nil {
		return err
	}
	if len(patents) == 0 {
		return fmt.Errorf("no valid patents in %s", patentsPath)
	}
	fmt.Printf("Valid patents: %d\n\n", len(patents))

	gen := &traindata.Generator{LLM: buildLLM(cfg)}

	fmt.Println("Generating training pairs...")
	written, err := gen.WriteAll(context.Background(), patents, pairsDir)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Generation complete")
	fmt.Printf("Pairs generated: %d\n", written)
	fmt.Printf("Total examples:  %d (%d positive + %d negative)\n", written*2, written, written)
	fmt.Printf("Output directory: %s\n", pairsDir)
	return nil
}

func buildLLM(cfg config.Config) llm.Client {
	if cfg.LLMAPIKey == "" {
		fmt.Fprintln(os.Stderr, "LLM_API_KEY not set; disclosures will use the template fallback")
		return llm.PlaceholderClient{}
	}
	client, err := llm.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "llm client unavailable (%v); using template fallback\n", err)
		return llm.PlaceholderClient{}
	}
	return llm.WithRetry(client)
}
