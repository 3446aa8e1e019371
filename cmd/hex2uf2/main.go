// Command hex2uf2 converts Intel HEX or raw binary firmware images to UF2.
//
// Usage:
//
//	hex2uf2 [OPTIONS] [INPUT [OUTPUT]]
//
// Settings may also come from the environment (UF2_FAMILY, UF2_BASE_ADDRESS,
// LOG_FORMAT, LOG_LEVEL, S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PREFIX,
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY). Flags take precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/moffa90/go-uf2/convert"
	"github.com/moffa90/go-uf2/internal/config"
	"github.com/moffa90/go-uf2/storage"
	"github.com/moffa90/go-uf2/uf2"
)

// errUsage is returned for bad command lines; usage has already been printed.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	in, out      string
	family       string
	base         string
	publish      string
	listFamilies bool
	info         bool
	progress     bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("hex2uf2", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  hex2uf2 [OPTIONS] [INPUT [OUTPUT]]\nOptions:\n")
		fs.PrintDefaults()
	}

	o := &options{}
	fs.StringVar(&o.in, "in", "", "input `file` (.hex, or .bin with -base)")
	fs.StringVar(&o.out, "out", "", "output `file` (default: input with a .uf2 extension)")
	fs.StringVar(&o.family, "family", "", "UF2 family `ID` (hex) or a known family name, see -list-families")
	fs.StringVar(&o.base, "base", "", "load `address` of a raw binary input")
	fs.StringVar(&o.publish, "publish", "", "upload the output to S3 under `key`")
	fs.BoolVar(&o.listFamilies, "list-families", false, "print the known family names and exit")
	fs.BoolVar(&o.info, "info", false, "summarise an existing UF2 file instead of converting")
	fs.BoolVar(&o.progress, "progress", false, "print conversion progress to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, fs, errUsage
	}
	if fs.NArg() > 2 || (o.in != "" && fs.NArg() > 1) {
		fs.Usage()
		return nil, fs, errUsage
	}
	if o.in == "" {
		o.in = fs.Arg(0)
		if o.out == "" {
			o.out = fs.Arg(1)
		}
	} else if o.out == "" {
		o.out = fs.Arg(0)
	}
	return o, fs, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if o.listFamilies {
		return listFamilies(stdout)
	}
	if o.in == "" {
		fs.Usage()
		return errUsage
	}
	if o.info {
		return info(stdout, o.in)
	}

	// Load configuration from environment
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.family != "" {
		cfg.Family = o.family
	}
	if o.base != "" {
		cfg.BaseAddress = o.base
	}

	familyID, err := cfg.FamilyID()
	if err != nil {
		return err
	}
	base, err := cfg.Base()
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(stderr)
	logger.Debug("configuration", slog.String("config", cfg.String()))

	opts := []convert.Option{convert.WithLogger(logger)}
	if o.progress {
		opts = append(opts, convert.WithProgressCallback(progressPrinter(stderr)))
	}
	if o.publish != "" {
		if !cfg.S3Enabled() {
			return fmt.Errorf("-publish: %w", storage.ErrS3NotConfigured)
		}
		s3, err := storage.NewS3Storage(ctx, nil, cfg.S3Config())
		if err != nil {
			return fmt.Errorf("initialize S3: %w", err)
		}
		opts = append(opts, convert.WithStorage(s3))
	}

	res, err := convert.New(opts...).Convert(ctx, convert.Job{
		InputPath:   o.in,
		OutputPath:  o.out,
		FamilyID:    familyID,
		BaseAddress: base,
		PublishKey:  o.publish,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d blocks, %d bytes\n", res.OutputPath, res.Layout.ActualBlockCount, res.BytesWritten)
	if res.URL != "" {
		fmt.Fprintln(stdout, res.URL)
	}
	return nil
}

func listFamilies(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range uf2.Families() {
		if f.ID == uf2.FamilyNone {
			continue
		}
		fmt.Fprintf(tw, "%s\t0x%08X\t%s\n", f.Name, f.ID, f.Description)
	}
	return tw.Flush()
}

func info(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := uf2.Inspect(f)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	families := make([]string, 0, len(s.Families))
	for _, id := range s.Families {
		name := fmt.Sprintf("0x%08X", id)
		if n := uf2.FamilyName(id); n != "" {
			name += " (" + n + ")"
		}
		families = append(families, name)
	}
	if len(families) == 0 {
		families = append(families, "none")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", path)
	fmt.Fprintf(tw, "blocks:\t%d (header count %d, consistent %t)\n", s.Blocks, s.HeaderBlockCount, s.ConsistentCount)
	fmt.Fprintf(tw, "range:\t0x%08X-0x%08X\n", s.MinAddr, s.MaxAddr-1)
	fmt.Fprintf(tw, "payload:\t%d bytes\n", s.PayloadBytes)
	fmt.Fprintf(tw, "families:\t%s\n", strings.Join(families, ", "))
	fmt.Fprintf(tw, "sequential:\t%t\n", s.Sequential)
	return tw.Flush()
}

func progressPrinter(w io.Writer) convert.ProgressCallback {
	var lastPhase string
	return func(p convert.Progress) {
		if p.Phase != lastPhase && lastPhase == convert.PhaseEncoding {
			fmt.Fprintln(w)
		}
		lastPhase = p.Phase

		if p.Phase == convert.PhaseEncoding {
			fmt.Fprintf(w, "\r[%s] %5.1f%% block %d/%d", p.Phase, p.Percentage, p.CurrentBlock, p.TotalBlocks)
			return
		}
		fmt.Fprintf(w, "[%s] %5.1f%%\n", p.Phase, p.Percentage)
	}
}
