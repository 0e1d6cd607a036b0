// Command sonido-index summarises a tree of extracted feature arrays as a
// labelled dataset: classes, labels, per-class counts and an optional
// stratified train/validation split.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RyanBlaney/sonido-extract/dataset"
	"github.com/RyanBlaney/sonido-extract/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("sonido-index", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: sonido-index [OPTIONS] <features_dir>")
		fs.PrintDefaults()
	}

	opts := dataset.DefaultOptions()
	skip := fs.String("skip", strings.Join(opts.SkipDirs, ","), "Comma-separated directory names to ignore")
	fs.StringVar(&opts.Extension, "ext", opts.Extension, "Sample file extension")
	verify := fs.Bool("verify", false, "Load every sample and report unreadable files")
	split := fs.Float64("split", 0, "Validation fraction for a stratified split (0 disables)")
	seed := fs.Uint64("seed", 42, "Split seed")
	asJSON := fs.Bool("json", false, "Print the index as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	opts.SkipDirs = nil
	for _, name := range strings.Split(*skip, ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts.SkipDirs = append(opts.SkipDirs, name)
		}
	}

	log := logging.WithFields(logging.Fields{"component": "sonido-index"})

	ix, err := dataset.Build(fs.Arg(0), opts)
	if err != nil {
		log.Error(err, "Failed to index dataset", logging.Fields{"root": fs.Arg(0)})
		return 1
	}

	if *verify {
		bad := 0
		for i := range ix.Len() {
			if _, _, err := ix.Load(i); err != nil {
				log.Warn("Unreadable sample", logging.Fields{"path": ix.Samples[i].Path, "error": err.Error()})
				bad++
			}
		}
		if bad > 0 {
			log.Error(fmt.Errorf("%d of %d samples unreadable", bad, ix.Len()), "Verification failed")
			return 2
		}
		log.Info("All samples readable", logging.Fields{"samples": ix.Len()})
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ix); err != nil {
			log.Error(err, "Failed to encode index")
			return 1
		}
		return 0
	}

	printSummary(stdout, "dataset", ix)

	if *split > 0 {
		train, val, err := ix.Split(*split, *seed)
		if err != nil {
			log.Error(err, "Failed to split dataset")
			return 1
		}
		printSummary(stdout, "train", train)
		printSummary(stdout, "validation", val)
	}
	return 0
}

func printSummary(w io.Writer, title string, ix *dataset.Index) {
	counts := ix.ClassCounts()
	fmt.Fprintf(w, "%s: %d samples, %d classes\n", title, ix.Len(), ix.NumClasses())
	for label, class := range ix.Classes {
		fmt.Fprintf(w, "  %3d  %-24s %d\n", label, class, counts[class])
	}
}
