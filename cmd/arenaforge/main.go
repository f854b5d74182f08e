// Command arenaforge expands arena template files into concrete variation
// files. It provides commands for generating full cross-products, sampling,
// counting, and bulk operation over directories of templates.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ArenaForge/core/expand"
	"github.com/FocuswithJustin/ArenaForge/core/template"
	"github.com/FocuswithJustin/ArenaForge/internal/bulk"
	"github.com/FocuswithJustin/ArenaForge/internal/bundle"
	"github.com/FocuswithJustin/ArenaForge/internal/catalog"
	"github.com/FocuswithJustin/ArenaForge/internal/logging"
	"github.com/FocuswithJustin/ArenaForge/internal/output"
)

const (
	toolName = "arenaforge"
	version  = "0.2.0"
)

// CLI defines the command-line interface for arenaforge.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" help:"Log format (text, json)"`

	Generate GenerateCmd `cmd:"" help:"Generate all variations of a template"`
	Sample   SampleCmd   `cmd:"" help:"Generate a uniform sample of a template's variations"`
	Count    CountCmd    `cmd:"" help:"Count a template's variations without generating"`
	Bulk     BulkGroup   `cmd:"" help:"Operate on every template under a directory"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// BulkGroup contains the directory-wide commands.
type BulkGroup struct {
	Count  BulkCountCmd  `cmd:"" help:"Count variations of every template under a directory"`
	Sample BulkSampleCmd `cmd:"" help:"Sample variations of every template under a directory"`
}

// OutputFlags are the flags shared by the generating commands.
type OutputFlags struct {
	Output              string `short:"o" help:"Output directory (default tmp/<template>_variations)" type:"path"`
	PreventTemplateCopy bool   `help:"Do not copy the template into the output directory"`
	Bundle              string `help:"Also pack the output directory into this archive file" type:"path"`
	Compression         string `default:"xz" help:"Bundle compression (xz, gzip)"`
	Catalog             string `help:"Record the run in this SQLite catalog" type:"path"`
}

// GenerateCmd generates variations exhaustively.
type GenerateCmd struct {
	Template string `arg:"" help:"Template file" type:"existingfile"`
	Seed     int64  `default:"1234" help:"Random seed for restricted draws"`
	Max      int64  `default:"10000" help:"Abort when the variant count exceeds this ceiling; negative lifts it"`
	Head     int    `help:"Generate only the first N variations, ignoring the ceiling"`

	OutputFlags `embed:""`
}

// Run implements the generate command.
func (c *GenerateCmd) Run() error {
	opts := expand.Options{Seed: c.Seed, CardinalityCeiling: c.Max}
	if c.Head > 0 {
		// Taking a fixed-size head is safe however large the space is.
		opts.CardinalityCeiling = -1
	}
	return generate(c.Template, opts, c.Head, c.OutputFlags)
}

// SampleCmd generates a uniform sample without replacement.
type SampleCmd struct {
	Template string `arg:"" help:"Template file" type:"existingfile"`
	Amount   int    `required:"" help:"Number of variations to sample"`
	Seed     int64  `default:"1234" help:"Random seed for sampling and restricted draws"`

	OutputFlags `embed:""`
}

// Run implements the sample command.
func (c *SampleCmd) Run() error {
	if c.Amount < 1 {
		return fmt.Errorf("sample amount must be positive, got %d", c.Amount)
	}
	// Sampling is exempt from the ceiling.
	opts := expand.Options{Seed: c.Seed, CardinalityCeiling: -1, SampleCount: c.Amount}
	return generate(c.Template, opts, 0, c.OutputFlags)
}

// CountCmd counts without generating.
type CountCmd struct {
	Template string `arg:"" help:"Template file" type:"existingfile"`
}

// Run implements the count command.
func (c *CountCmd) Run() error {
	tpl, err := template.ParseFile(c.Template)
	if err != nil {
		return err
	}
	total, err := expand.Count(tpl.Root)
	if err != nil {
		return err
	}
	explain, err := expand.Explain(tpl.Root)
	if err != nil {
		return err
	}
	fmt.Printf("Total possible variations: %d\n", total)
	fmt.Println(explain)
	return nil
}

// BulkCountCmd counts every template under a directory.
type BulkCountCmd struct {
	Dir string `arg:"" help:"Directory to scan" type:"existingdir"`

	BulkFlags `embed:""`
}

// BulkFlags are the discovery flags shared by the bulk commands.
type BulkFlags struct {
	IgnoreDir     []string `help:"Directory name to skip (repeatable)"`
	IncludeHidden bool     `help:"Descend into hidden files and directories"`
}

// Run implements the bulk count command. One line per template:
// path, count and breakdown, tab-separated.
func (c *BulkCountCmd) Run() error {
	paths, err := bulk.Scan(c.Dir, c.IgnoreDir, c.IncludeHidden)
	if err != nil {
		return err
	}
	failures := 0
	for _, path := range paths {
		tpl, err := template.ParseFile(path)
		if err != nil {
			logging.Warn("template failed", "template", path, "error", err.Error())
			failures++
			continue
		}
		total, err := expand.Count(tpl.Root)
		if err != nil {
			logging.Warn("template failed", "template", path, "error", err.Error())
			failures++
			continue
		}
		explain, err := expand.Explain(tpl.Root)
		if err != nil {
			logging.Warn("template failed", "template", path, "error", err.Error())
			failures++
			continue
		}
		fmt.Printf("%s\t%d\t%s\n", path, total, explain)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d templates failed", failures, len(paths))
	}
	return nil
}

// BulkSampleCmd samples every template under a directory.
type BulkSampleCmd struct {
	Dir    string `arg:"" help:"Directory to scan" type:"existingdir"`
	Amount int    `required:"" help:"Number of variations to sample per template"`
	Seed   int64  `default:"1234" help:"Random seed for sampling and restricted draws"`

	BulkFlags `embed:""`
}

// Run implements the bulk sample command.
func (c *BulkSampleCmd) Run() error {
	if c.Amount < 1 {
		return fmt.Errorf("sample amount must be positive, got %d", c.Amount)
	}
	paths, err := bulk.Scan(c.Dir, c.IgnoreDir, c.IncludeHidden)
	if err != nil {
		return err
	}
	failures := 0
	for _, path := range paths {
		opts := expand.Options{Seed: c.Seed, CardinalityCeiling: -1, SampleCount: c.Amount}
		if err := generate(path, opts, 0, OutputFlags{Compression: "xz"}); err != nil {
			logging.Warn("template failed", "template", path, "error", err.Error())
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d templates failed", failures, len(paths))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

// Run implements the version command.
func (c *VersionCmd) Run() error {
	fmt.Printf("%s %s\n", toolName, version)
	return nil
}

// generate runs one template end to end: parse, expand, write the output
// directory, then the optional bundle and catalog record.
func generate(templatePath string, opts expand.Options, head int, flags OutputFlags) error {
	tpl, err := template.ParseFile(templatePath)
	if err != nil {
		return err
	}

	x, err := expand.New(tpl.Root, tpl.Rules, opts)
	if err != nil {
		return err
	}
	explain, err := expand.Explain(tpl.Root)
	if err != nil {
		return err
	}

	total := x.Total()
	fmt.Printf("Total possible variations: %d\n", total)
	fmt.Println(explain)

	n := x.Len()
	if head > 0 && head < n {
		n = head
	}

	dir := flags.Output
	if dir == "" {
		dir = output.DefaultDir(templatePath)
	}
	logging.RunStarted(templatePath, int(opts.Seed), total, "producing", n)

	w, err := output.NewWriter(dir)
	if err != nil {
		return err
	}

	manifest, err := writeRun(w, x, tpl, templatePath, opts, total, n, flags.PreventTemplateCopy)
	if err != nil {
		// A failed run must not leave a partial variant directory behind.
		if dErr := w.Discard(); dErr != nil {
			logging.Warn("output cleanup failed", "dir", dir, "error", dErr.Error())
		}
		return err
	}
	logging.RunFinished(templatePath, manifest.Produced, dir)

	if flags.Bundle != "" {
		comp, err := bundle.ParseCompression(flags.Compression)
		if err != nil {
			return err
		}
		if err := bundle.Create(flags.Bundle, dir, comp); err != nil {
			return err
		}
		logging.Info("bundle written", "bundle", flags.Bundle)
	}

	if flags.Catalog != "" {
		cat, err := catalog.Open(flags.Catalog)
		if err != nil {
			return err
		}
		defer cat.Close()
		if err := cat.RecordRun(manifest); err != nil {
			return err
		}
		logging.Info("run recorded", "catalog", flags.Catalog, "run_id", manifest.RunID)
	}
	return nil
}

// writeRun fills the output directory: the template copy, the variant files,
// meta.csv and run.json. Any error leaves the writer for the caller to
// discard. Filenames are padded to the produced count, not the full
// cross-product, so sampled runs keep short indices.
func writeRun(w *output.Writer, x *expand.Expansion, tpl *template.Template, templatePath string, opts expand.Options, total int64, n int, preventTemplateCopy bool) (*output.Manifest, error) {
	if !preventTemplateCopy {
		if err := w.WriteTemplateCopy(tpl); err != nil {
			return nil, err
		}
	}

	stem := output.Stem(templatePath)
	width := output.IndexWidth(int64(n))
	for i := 0; i < n; i++ {
		v, err := x.Variant(i)
		if err != nil {
			return nil, err
		}
		if _, err := w.WriteVariant(v, stem, width); err != nil {
			return nil, err
		}
	}

	manifest, err := w.WriteManifest(output.RunInfo{
		Tool:     toolName,
		Version:  version,
		Template: templatePath,
		Seed:     int(opts.Seed),
		Ceiling:  int(opts.CardinalityCeiling),
		Sample:   opts.SampleCount,
		Total:    total,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func initLogging() error {
	level, err := logging.ParseLevel(CLI.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(CLI.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(toolName),
		kong.Description("Arena template expansion - turn one template into its concrete variations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err := initLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
