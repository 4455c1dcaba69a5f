package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/spritepack/internal/codec"
	"github.com/ironsheep/spritepack/internal/palette"
)

func (c *CLI) paletteCommand() *cobra.Command {
	opts := palette.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "palette <image> [other]",
		Short: "Show the palette of an image, or compare two images",
		Long: `Print the median-cut palette of an image with each color's share of the
opaque pixels. With a second image, also print the Wasserstein distance and
the weighted intersection between the two palettes.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPalette(cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Colors, "colors", opts.Colors, "maximum number of colors (2-256)")
	cmd.Flags().IntVar(&opts.Bits, "bits", opts.Bits, "histogram bits per channel (1-8)")
	cmd.Flags().Uint8Var(&opts.AlphaThreshold, "alpha", opts.AlphaThreshold, "ignore pixels with alpha at or below this value")

	return cmd
}

func (c *CLI) runPalette(w io.Writer, paths []string, opts palette.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	cache := codec.NewImageCache()

	palettes := make([]*palette.Palette, len(paths))
	for i, path := range paths {
		img, err := cache.Load(path)
		if err != nil {
			return err
		}
		p, err := palette.Quantize(img.Pix, opts)
		if err != nil {
			return err
		}
		c.Logger.Debug("Quantized", "path", path, "boxes", p.Len(), "pixels", p.Total)
		palettes[i] = p

		if i > 0 {
			fmt.Fprintln(w)
		}
		printPalette(w, path, img.Width, img.Height, p)
	}

	if len(palettes) == 2 {
		wasserstein, err := palette.WassersteinDistance(palettes[0], palettes[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		printKeyValue(w, "wasserstein", fmt.Sprintf("%.6f", wasserstein))
		printKeyValue(w, "intersection", fmt.Sprintf("%.6f", palette.WeightedIntersection(palettes[0], palettes[1])))
	}
	return nil
}

func printPalette(w io.Writer, path string, width, height int, p *palette.Palette) {
	fmt.Fprintln(w, StyleTitle.Render(path)+" "+StyleDim.Render(fmt.Sprintf("%dx%d", width, height)))
	if p.Len() == 0 {
		printDetail(w, "fully transparent")
		return
	}
	for _, s := range p.Swatches() {
		fmt.Fprintf(w, "  %s %s %s %s\n",
			swatch(s.Hex),
			StyleValue.Render(s.Hex),
			StyleNumber.Render(fmt.Sprintf("%5.1f%%", s.Weight*100)),
			StyleDim.Render(fmt.Sprintf("hsl(%d, %d%%, %d%%)", s.HSL.H, s.HSL.S, s.HSL.L)),
		)
	}
}
