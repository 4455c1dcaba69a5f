package packer

import (
	"math"
	"math/bits"
	"slices"
	"sort"

	"github.com/ironsheep/spritepack/internal/errors"
)

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

func (r Rect) right() int  { return r.X + r.Width }
func (r Rect) bottom() int { return r.Y + r.Height }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return r.X <= o.X && r.Y <= o.Y && r.right() >= o.right() && r.bottom() >= o.bottom()
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.right() && r.right() > o.X && r.Y < o.bottom() && r.bottom() > o.Y
}

// Heuristic scores placing candidate at the origin of free. Lower is better.
type Heuristic func(free, candidate Rect) int

// SideHeuristic prefers the free rectangle leaving the least slack on its
// tighter axis.
func SideHeuristic(free, candidate Rect) int {
	return min(free.Width-candidate.Width, free.Height-candidate.Height)
}

// AreaHeuristic prefers the free rectangle leaving the least area.
func AreaHeuristic(free, candidate Rect) int {
	return free.Width*free.Height - candidate.Width*candidate.Height
}

// Options controls page geometry.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Padding   int // space between items
	Border    int // space between items and the page edge
	Pow2      bool
	Rotate    bool

	// Heuristic defaults to SideHeuristic.
	Heuristic Heuristic
}

// DefaultOptions returns 4096x4096 pages with no padding, border, rounding
// or rotation.
func DefaultOptions() Options {
	return Options{MaxWidth: 4096, MaxHeight: 4096, Heuristic: SideHeuristic}
}

// Validate checks that at least one pixel fits inside the border.
func (o Options) Validate() error {
	if o.MaxWidth <= 0 || o.MaxHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "page size must be positive, got %dx%d", o.MaxWidth, o.MaxHeight)
	}
	if o.Padding < 0 || o.Border < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "padding and border must not be negative, got %d and %d", o.Padding, o.Border)
	}
	if 2*o.Border >= o.MaxWidth || 2*o.Border >= o.MaxHeight {
		return errors.New(errors.ErrCodeInvalidConfiguration, "border %d leaves no room on a %dx%d page", o.Border, o.MaxWidth, o.MaxHeight)
	}
	return nil
}

// Item is a rectangle to pack together with a caller payload.
type Item[T any] struct {
	Width  int
	Height int
	Value  T
}

// Placement is a packed item. Width and Height are the footprint on the page,
// swapped from the item's when Rotated.
type Placement[T any] struct {
	Rect
	Rotated bool
	Value   T
}

// Page is one packed canvas.
type Page[T any] struct {
	Width      int
	Height     int
	Placements []Placement[T]

	opts Options
	free []Rect
}

// Grouping gates which pages may receive an item based on an affinity
// penalty between the item and the items already on the page.
type Grouping[T any] struct {
	Penalty   func(item T, page []T) (float64, error)
	Threshold float64
	Diminish  float64
}

// limit returns the largest penalty a page holding n items accepts.
func (g *Grouping[T]) limit(n int) float64 {
	limit := g.Threshold * math.Max(1, g.Diminish*float64(n))
	if math.IsNaN(limit) {
		return 0
	}
	return limit
}

// Pack places every item on a page. group may be nil to pack purely by
// geometry. The input slice is not modified.
//
// Items are placed largest side first; ties keep input order. Each item goes
// to the first existing page that has room and, when group is set, whose
// penalty stays within the group limit. Otherwise a new page is opened.
//
// Parameters:
//   - items: Rectangles to place. Padding is added by Pack, not the caller.
//   - opts: Page limits, padding, border and placement heuristic. A nil
//     Heuristic means SideHeuristic.
//   - group: Optional affinity gate deciding which pages may share items.
//
// Returns:
//   - []*Page[T]: Pages in creation order, each with its placements.
//   - error: Non-nil if options are invalid, an item cannot fit on an empty
//     page, or group.Penalty fails.
//
// # Errors
//
//   - INVALID_CONFIGURATION if the page size, padding or border is invalid
//   - INVALID_INPUT if an item has a non-positive width or height
//   - SIZE_EXCEEDED if an item is larger than an empty page
func Pack[T any](items []Item[T], opts Options, group *Grouping[T]) ([]*Page[T], error) {
	if opts.Heuristic == nil {
		opts.Heuristic = SideHeuristic
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return max(sorted[i].Width, sorted[i].Height) > max(sorted[j].Width, sorted[j].Height)
	})

	var pages []*Page[T]
next:
	for _, item := range sorted {
		if item.Width <= 0 || item.Height <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "item size must be positive, got %dx%d", item.Width, item.Height)
		}

		for _, page := range pages {
			candidate, ok := page.find(item.Width, item.Height)
			if !ok {
				continue
			}
			if group != nil && len(page.Placements) > 0 {
				penalty, err := group.Penalty(item.Value, page.Values())
				if err != nil {
					return nil, err
				}
				if penalty > group.limit(len(page.Placements)) {
					continue
				}
			}
			page.place(candidate, item)
			continue next
		}

		page := newPage[T](opts)
		candidate, ok := page.find(item.Width, item.Height)
		if !ok {
			return nil, errors.New(errors.ErrCodeSizeExceeded,
				"image %dx%d exceeds page limits %dx%d", item.Width, item.Height, opts.MaxWidth, opts.MaxHeight)
		}
		page.place(candidate, item)
		pages = append(pages, page)
	}
	return pages, nil
}

func newPage[T any](opts Options) *Page[T] {
	return &Page[T]{
		opts: opts,
		free: []Rect{{
			X:      opts.Border,
			Y:      opts.Border,
			Width:  opts.MaxWidth - 2*opts.Border + opts.Padding,
			Height: opts.MaxHeight - 2*opts.Border + opts.Padding,
		}},
	}
}

// Values returns the payloads placed on the page in placement order.
func (p *Page[T]) Values() []T {
	values := make([]T, len(p.Placements))
	for i, pl := range p.Placements {
		values[i] = pl.Value
	}
	return values
}

// candidate is a padded node chosen for an item.
type candidate struct {
	node    Rect
	rotated bool
}

// find returns the best-scoring padded node for a width x height item.
func (p *Page[T]) find(width, height int) (candidate, bool) {
	w, h := width+p.opts.Padding, height+p.opts.Padding

	var best candidate
	found := false
	bestScore := math.MaxInt
	for _, free := range p.free {
		if w <= free.Width && h <= free.Height {
			node := Rect{X: free.X, Y: free.Y, Width: w, Height: h}
			if score := p.opts.Heuristic(free, node); score < bestScore {
				bestScore, best, found = score, candidate{node: node}, true
			}
		}
		if p.opts.Rotate && h <= free.Width && w <= free.Height {
			node := Rect{X: free.X, Y: free.Y, Width: h, Height: w}
			if score := p.opts.Heuristic(free, node); score < bestScore {
				bestScore, best, found = score, candidate{node: node, rotated: true}, true
			}
		}
	}
	return best, found
}

func (p *Page[T]) place(c candidate, item Item[T]) {
	p.split(c.node)
	p.prune()

	placed := Placement[T]{
		Rect:    Rect{X: c.node.X, Y: c.node.Y, Width: item.Width, Height: item.Height},
		Rotated: c.rotated,
		Value:   item.Value,
	}
	if c.rotated {
		placed.Width, placed.Height = item.Height, item.Width
	}
	p.Placements = append(p.Placements, placed)

	p.Width = max(p.Width, placed.right()+p.opts.Border)
	p.Height = max(p.Height, placed.bottom()+p.opts.Border)
	if p.opts.Pow2 {
		p.Width = nextPow2(p.Width)
		p.Height = nextPow2(p.Height)
	}
}

// split replaces every free rectangle overlapping node by the strips of it
// that node leaves uncovered.
func (p *Page[T]) split(node Rect) {
	for i := len(p.free) - 1; i >= 0; i-- {
		free := p.free[i]
		if !free.Overlaps(node) {
			continue
		}
		p.free = slices.Delete(p.free, i, i+1)

		if node.Y > free.Y {
			p.free = append(p.free, Rect{X: free.X, Y: free.Y, Width: free.Width, Height: node.Y - free.Y})
		}
		if node.bottom() < free.bottom() {
			p.free = append(p.free, Rect{X: free.X, Y: node.bottom(), Width: free.Width, Height: free.bottom() - node.bottom()})
		}
		if node.X > free.X {
			p.free = append(p.free, Rect{X: free.X, Y: free.Y, Width: node.X - free.X, Height: free.Height})
		}
		if node.right() < free.right() {
			p.free = append(p.free, Rect{X: node.right(), Y: free.Y, Width: free.right() - node.right(), Height: free.Height})
		}
	}
}

// prune drops free rectangles contained in another one.
func (p *Page[T]) prune() {
	for i := len(p.free) - 1; i > 0; i-- {
		for j := i - 1; j >= 0; j-- {
			if p.free[j].Contains(p.free[i]) {
				p.free = slices.Delete(p.free, i, i+1)
				break
			}
			if p.free[i].Contains(p.free[j]) {
				p.free = slices.Delete(p.free, j, j+1)
				i--
			}
		}
	}
}

// nextPow2 rounds v up to a power of two, with a minimum of 1.
func nextPow2(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}
