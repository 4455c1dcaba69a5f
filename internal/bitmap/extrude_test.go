package bitmap

import (
	"image/color"
	"testing"
)

func TestExtrude(t *testing.T) {
	sprite := createSolidBitmap(2, 2, color.NRGBA{0, 128, 255, 255})
	canvas := New("page", 16, 16)
	Copy(sprite, canvas, 10, 10, 0, 0, 2, 2)

	Extrude(canvas, 2, 10, 10, 2, 2, sprite.TrimmedEdges())

	bled := [][2]int{
		{9, 10}, {9, 11}, // left
		{12, 10}, {12, 11}, // right
		{10, 9}, {11, 9}, // top
		{10, 12}, {11, 12}, // bottom
		{9, 9}, {12, 9}, {9, 12}, {12, 12}, // corners
	}
	for _, p := range bled {
		if got := pixel(canvas, p[0], p[1]); got.A == 0 {
			t.Errorf("pixel (%d,%d) should be bled, got transparent", p[0], p[1])
		}
	}

	untouched := [][2]int{{8, 10}, {13, 11}, {10, 8}, {11, 13}}
	for _, p := range untouched {
		if got := pixel(canvas, p[0], p[1]); got.A != 0 {
			t.Errorf("pixel (%d,%d) beyond padding/2 should stay transparent, got %v", p[0], p[1], got)
		}
	}
}

func TestExtrude_ZeroPadding(t *testing.T) {
	canvas := New("page", 8, 8)
	Copy(createSolidBitmap(2, 2, color.NRGBA{A: 255}), canvas, 3, 3, 0, 0, 2, 2)

	for _, padding := range []int{0, 1} {
		Extrude(canvas, padding, 3, 3, 2, 2, Edges{})
		if got := pixel(canvas, 2, 3); got.A != 0 {
			t.Errorf("padding %d: expected no bleed, got %v", padding, got)
		}
	}
}

func TestExtrude_SkipsTrimmedSides(t *testing.T) {
	canvas := New("page", 16, 16)
	Copy(createSolidBitmap(2, 2, color.NRGBA{A: 255}), canvas, 6, 6, 0, 0, 2, 2)

	Extrude(canvas, 4, 6, 6, 2, 2, Edges{EdgeLeft: true, EdgeTop: true})

	if got := pixel(canvas, 5, 6); got.A != 0 {
		t.Errorf("trimmed left side should not bleed, got %v", got)
	}
	if got := pixel(canvas, 6, 5); got.A != 0 {
		t.Errorf("trimmed top side should not bleed, got %v", got)
	}
	if got := pixel(canvas, 9, 6); got.A == 0 {
		t.Error("right side should bleed two pixels")
	}
	if got := pixel(canvas, 7, 9); got.A == 0 {
		t.Error("bottom side should bleed two pixels")
	}
}

func TestExtrude_ClipsAtCanvasEdge(t *testing.T) {
	canvas := New("page", 4, 4)
	Copy(createSolidBitmap(2, 2, color.NRGBA{A: 255}), canvas, 0, 0, 0, 0, 2, 2)

	// Must not panic when the gutter runs off the canvas.
	Extrude(canvas, 4, 0, 0, 2, 2, Edges{})

	if got := pixel(canvas, 3, 3); got.A == 0 {
		t.Error("bottom-right gutter should be bled")
	}
}
