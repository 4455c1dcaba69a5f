// Package atlas turns a set of sprite images into packed spritesheet pages
// and their manifests.
//
// # Pipeline
//
// Generator.Generate runs one batch:
//
//  1. Decode every raster input (other files are skipped).
//  2. Downscale each sprite when Options.Downscale < 1, then trim its
//     transparent margins when Options.Trim is set.
//  3. With grouping enabled, quantize a small palette per sprite.
//  4. Pack all sprites into pages (package packer), gated by palette affinity
//     when grouping is enabled.
//  5. Render each page: copy sprites in, turning rotated placements
//     clockwise, and bleed edges into the padding when Options.Extrude is set.
//  6. Encode the page as PNG when any sprite has transparency, otherwise as
//     JPEG. PNG pages go through the Compressor when quantization is enabled.
//  7. Name the image and its manifest after their own content hash.
//
// Pages are processed one after another. Every failure aborts the run; no
// partial atlas is returned.
//
// ReadDir and WriteDir move a batch between the filesystem and []File;
// Generate itself never touches the filesystem.
//
// # Grouping Penalty
//
// The penalty of adding a sprite to a page is the smallest palette distance
// between the sprite and any sprite already there, plus Group.Opaque when
// the page mixes opaque and transparent sprites. See package packer for how
// the penalty is compared with Group.Threshold and Group.Diminish.
//
// # Manifest Format
//
// Each page gets a JSON manifest:
//
//	{
//	  "frames": {
//	    "hero.png": {
//	      "frame": {"x": 0, "y": 0, "w": 30, "h": 40},
//	      "rotated": false,
//	      "trimmed": true,
//	      "spriteSourceSize": {"x": 2, "y": 4, "w": 30, "h": 40},
//	      "sourceSize": {"w": 34, "h": 48},
//	      "pivot": {"x": 0.5, "y": 0.5}
//	    }
//	  },
//	  "meta": {"image": "3f2a...c1.png", "format": "RGBA8888", "size": {"w": 64, "h": 64}, "scale": 1}
//	}
//
// frame w/h are in the sprite's own orientation; a rotated sprite occupies
// h x w pixels on the page, turned a quarter clockwise.
package atlas
