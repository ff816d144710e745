package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/karpnv/ngrampipe"
	"github.com/karpnv/ngrampipe/far"
)

func main() {
	var (
		arpaA    = flag.String("arpa-a", "", "Path to the first ARPA model (required)")
		alpha    = flag.Float64("alpha", 1, "Interpolation weight of arpa-a")
		arpaB    = flag.String("arpa-b", "", "Path to the second ARPA model (required)")
		beta     = flag.Float64("beta", 1, "Interpolation weight of arpa-b")
		outDir   = flag.String("out", "", "Directory for intermediate and result files (required)")
		kenlmBin = flag.String("kenlm-bin", "", "Path to the KenLM build_binary executable (required)")

		testFile  = flag.String("test-file", "", "Test corpus for perplexity evaluation (text, .json manifest, or .gz)")
		symbols   = flag.String("symbols", "", "Existing symbol table (.syms); derived from the tokenizer when omitted")
		tokModel  = flag.String("tokenizer", "", "SentencePiece .model file of the tokenizer")
		force     = flag.Bool("force", false, "Recompute and rewrite all files")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		lowercase = flag.Bool("lowercase", false, "Lowercase corpus text before tokenizing")
		rmPunct   = flag.Bool("rm-punctuation", false, "Strip punctuation marks before tokenizing")
		sepPunct  = flag.Bool("separate-punctuation", true, "Separate trailing punctuation by a space")
		punct     = flag.String("punctuation", far.DefaultPunctuation, "Punctuation marks the normalization options act on")

		sweep      = flag.Bool("sweep", false, "Sweep interpolation weights, ranking by perplexity (needs -test-file and -tokenizer)")
		sweepMin   = flag.Float64("sweep-min", 0.1, "Sweep minimum alpha")
		sweepMax   = flag.Float64("sweep-max", 0.9, "Sweep maximum alpha")
		sweepStep  = flag.Float64("sweep-step", 0.1, "Sweep alpha step")
		sweepTotal = flag.Float64("sweep-total", 1.0, "Sweep weight total (beta = total - alpha)")
	)
	flag.Parse()

	if *arpaA == "" || *arpaB == "" || *outDir == "" || *kenlmBin == "" {
		fmt.Fprintln(os.Stderr, "Usage: ngram-merge -arpa-a A -arpa-b B -out DIR -kenlm-bin BIN [OPTIONS]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []ngrampipe.Option{
		ngrampipe.WithForce(*force),
		ngrampipe.WithLogger(logger),
		ngrampipe.WithNormalize(far.Normalize{
			Lowercase:           *lowercase,
			RemovePunctuation:   *rmPunct,
			SeparatePunctuation: *sepPunct,
			PunctuationMarks:    *punct,
		}),
	}
	if *testFile != "" {
		opts = append(opts, ngrampipe.WithTestCorpus(*testFile))
	}
	if *symbols != "" {
		opts = append(opts, ngrampipe.WithSymbolTable(*symbols))
	}
	if *tokModel != "" {
		opts = append(opts, ngrampipe.WithTokenizerModel(*tokModel))
	}

	p, err := ngrampipe.New(*arpaA, *alpha, *arpaB, *beta, *outDir, *kenlmBin, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *sweep {
		pairs := ngrampipe.WeightPairs(*sweepMin, *sweepMax, *sweepStep, *sweepTotal)
		results, err := p.Sweep(ctx, pairs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-8s %-8s %-12s\n", "alpha", "beta", "perplexity")
		for _, r := range results {
			fmt.Printf("%-8.3g %-8.3g %-12.4f\n", r.Pair.Alpha, r.Pair.Beta, r.Perplexity)
		}
		return
	}

	report, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Merged binary: %s\n", report.MergedBinary)
	fmt.Printf("Merged ARPA:   %s\n", report.MergedARPA)
	fmt.Printf("Artifact:      %s\n", report.Artifact)
	if report.Perplexity != "" {
		fmt.Printf("Perplexity:\n%s\n", report.Perplexity)
	}
}
