package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ironsheep/spritepack/internal/atlas"
	"github.com/ironsheep/spritepack/internal/config"
)

const (
	defaultPageSize = 2048 // CLI page size; the library default is 4096
)

// packOpts holds the command-line flags for the pack command. Flag values
// only override the configuration when the flag is given explicitly.
type packOpts struct {
	config    string
	prefix    string
	maxWidth  int
	maxHeight int
	padding   int
	border    int
	pow2      bool
	rotate    bool
	heuristic string
	trim      bool
	extrude   bool
	downscale float64
	group     bool
	colors    int
	threshold float64
	diminish  float64
	opaque    float64
	algorithm string
	quantize  bool
	quality   int
	dithering float64
	ordered   bool
	speed     int
	posterize int
}

// cliDefaults applies CLI-specific defaults on top of the library defaults.
func cliDefaults() atlas.Options {
	opts := atlas.DefaultOptions()
	opts.Pack.MaxWidth = defaultPageSize
	opts.Pack.MaxHeight = defaultPageSize
	opts.Pack.Pow2 = true
	opts.Pack.Rotate = true
	return opts
}

func (c *CLI) packCommand() *cobra.Command {
	defaults := cliDefaults()
	opts := packOpts{
		prefix:    defaults.Prefix,
		maxWidth:  defaults.Pack.MaxWidth,
		maxHeight: defaults.Pack.MaxHeight,
		pow2:      defaults.Pack.Pow2,
		rotate:    defaults.Pack.Rotate,
		heuristic: defaults.Pack.Heuristic,
		trim:      defaults.Trim,
		downscale: defaults.Downscale,
		group:     defaults.Group.Enabled,
		colors:    defaults.Group.Colors,
		threshold: defaults.Group.Threshold,
		algorithm: defaults.Group.Algorithm,
	}

	cmd := &cobra.Command{
		Use:   "pack <source> <destination>",
		Short: "Pack a directory of sprites into spritesheets",
		Long: `Pack every image under <source> into spritesheet pages and write each page
with its JSON manifest to <destination>. Files are named after their content
hash unless --prefix says otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := resolvePackOptions(cmd.Flags(), &opts)
			if err != nil {
				return err
			}
			return c.runPack(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], options)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "TOML configuration file")
	f.StringVarP(&opts.prefix, "prefix", "p", opts.prefix, "output name template; [hash] is replaced by the content hash")
	f.IntVar(&opts.maxWidth, "max-width", opts.maxWidth, "maximum page width")
	f.IntVar(&opts.maxHeight, "max-height", opts.maxHeight, "maximum page height")
	f.IntVar(&opts.padding, "padding", 0, "pixels between sprites")
	f.IntVar(&opts.border, "border", 0, "pixels between sprites and the page edge")
	f.BoolVar(&opts.pow2, "pow2", opts.pow2, "round page sizes up to powers of two")
	f.BoolVar(&opts.rotate, "rotate", opts.rotate, "allow quarter-turn rotation")
	f.StringVar(&opts.heuristic, "heuristic", opts.heuristic, "free-rectangle scoring: side (default), area")
	f.BoolVar(&opts.trim, "trim", opts.trim, "trim transparent margins")
	f.BoolVar(&opts.extrude, "extrude", false, "bleed sprite edges into the padding")
	f.Float64Var(&opts.downscale, "downscale", opts.downscale, "scale factor in (0, 1]")
	f.BoolVar(&opts.group, "group", opts.group, "keep sprites with similar palettes on the same page")
	f.IntVar(&opts.colors, "group-colors", opts.colors, "palette size per sprite for grouping")
	f.Float64Var(&opts.threshold, "group-threshold", opts.threshold, "largest accepted palette penalty")
	f.Float64Var(&opts.diminish, "group-diminish", 0, "threshold growth per sprite already on a page")
	f.Float64Var(&opts.opaque, "group-opaque", 0, "penalty for mixing opaque and transparent sprites")
	f.StringVar(&opts.algorithm, "group-algorithm", opts.algorithm, "palette distance: wasserstein (default), intersection")
	f.BoolVarP(&opts.quantize, "quantize", "q", false, "reduce PNG pages with pngquant")
	f.IntVar(&opts.quality, "quality", 0, "pngquant maximum quality and JPEG quality (0 keeps 100 for JPEG)")
	f.Float64Var(&opts.dithering, "dithering", 0, "pngquant Floyd-Steinberg dithering level in (0, 1]; 0 keeps the pngquant default")
	f.BoolVar(&opts.ordered, "ordered", false, "use pngquant ordered dithering instead of Floyd-Steinberg")
	f.IntVar(&opts.speed, "speed", 0, "pngquant speed 1 (slow) to 11 (fast)")
	f.IntVar(&opts.posterize, "posterize", 0, "pngquant posterize bits")

	return cmd
}

// resolvePackOptions layers defaults, the config file and explicit flags.
func resolvePackOptions(flags *pflag.FlagSet, opts *packOpts) (atlas.Options, error) {
	options := cliDefaults()
	if opts.config != "" {
		var err error
		if options, err = config.Load(opts.config, options); err != nil {
			return options, err
		}
	}

	overrides := map[string]func(){
		"prefix":          func() { options.Prefix = opts.prefix },
		"max-width":       func() { options.Pack.MaxWidth = opts.maxWidth },
		"max-height":      func() { options.Pack.MaxHeight = opts.maxHeight },
		"padding":         func() { options.Pack.Padding = opts.padding },
		"border":          func() { options.Pack.Border = opts.border },
		"pow2":            func() { options.Pack.Pow2 = opts.pow2 },
		"rotate":          func() { options.Pack.Rotate = opts.rotate },
		"heuristic":       func() { options.Pack.Heuristic = opts.heuristic },
		"trim":            func() { options.Trim = opts.trim },
		"extrude":         func() { options.Extrude = opts.extrude },
		"downscale":       func() { options.Downscale = opts.downscale },
		"group":           func() { options.Group.Enabled = opts.group },
		"group-colors":    func() { options.Group.Colors = opts.colors },
		"group-threshold": func() { options.Group.Threshold = opts.threshold },
		"group-diminish":  func() { options.Group.Diminish = opts.diminish },
		"group-opaque":    func() { options.Group.Opaque = opts.opaque },
		"group-algorithm": func() { options.Group.Algorithm = opts.algorithm },
		"quantize":        func() { options.Quantize.Enabled = opts.quantize },
		"quality":         func() { options.Quantize.Quality = opts.quality },
		"dithering":       func() { options.Quantize.Dithering = opts.dithering },
		"ordered":         func() { options.Quantize.Ordered = opts.ordered },
		"speed":           func() { options.Quantize.Speed = opts.speed },
		"posterize":       func() { options.Quantize.Posterize = opts.posterize },
	}
	flags.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	return options, options.Validate()
}

func (c *CLI) runPack(ctx context.Context, w io.Writer, source, destination string, options atlas.Options) error {
	prog := newProgress(c.Logger)

	files, err := atlas.ReadDir(ctx, source)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Read %d files from %s", len(files), source)

	result, err := atlas.New(options, c.Logger).Generate(ctx, files)
	if err != nil {
		return err
	}
	if err := atlas.WriteDir(destination, result.Files); err != nil {
		return err
	}

	sprites := 0
	for _, p := range result.Pages {
		sprites += p.Sprites
	}
	prog.done(fmt.Sprintf("Packed %d sprites", sprites))

	printSuccess(w, "Packed %s sprites into %s pages", StyleNumber.Render(fmt.Sprint(sprites)), StyleNumber.Render(fmt.Sprint(len(result.Pages))))
	for _, p := range result.Pages {
		printFile(w, p.Image)
		printStats(w, fmt.Sprintf("%dx%d", p.Width, p.Height), p.Format, fmt.Sprintf("%d sprites", p.Sprites), p.Manifest)
	}
	if len(result.Skipped) > 0 {
		printDetail(w, "skipped %d non-image files", len(result.Skipped))
	}
	return nil
}
