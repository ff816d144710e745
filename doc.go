// Package ngrampipe merges two ARPA n-gram language models with
// interpolation weights and produces a deployable KenLM artifact,
// optionally measuring the merged model's perplexity against a test
// corpus compiled through a SentencePiece tokenizer.
//
// # Quick Start
//
//	p, err := ngrampipe.New("a.arpa", 2, "b.arpa", 1, "out", "/opt/kenlm/bin/build_binary",
//	    ngrampipe.WithTestCorpus("test.txt"),
//	    ngrampipe.WithTokenizerModel("tokenizer.model"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := p.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Artifact, report.Perplexity)
//
// # Caching
//
// Every stage that writes a file checks its own output path first and is
// skipped when the file already exists, so an interrupted run resumes
// where it stopped. Pass WithForce(true) to regenerate everything.
//
// # External Tools
//
// The pipeline drives the ngramread, ngrammerge, ngramprint,
// ngramperplexity, and farcompilestrings executables, plus the KenLM
// build_binary given to New. They must be on PATH (build_binary is an
// explicit path). Any tool exiting non-zero aborts the run with the
// command line and both captured streams in the error.
package ngrampipe
