// Package card renders weekly poll results as raster images.
//
// # Overview
//
// A render call takes an immutable [Request] (poll date, question text,
// overall percentage, qualitative labels, per-option percentages and the
// vote count) and produces two PNG images:
//
//   - Main: a fixed-width card whose height depends on the text it carries.
//     Top to bottom it holds the date header, the word-wrapped question, a
//     rounded panel with the gauge, one labelled bar per option and the vote
//     count footer.
//   - Avatar: a fixed square with only the gauge, drawn at a larger profile.
//
// # Two-Pass Layout
//
// Nothing is retained as a layout tree; every position is derived from
// accumulated offsets. The main card is built in two passes:
//
//  1. Measure: wrap the question and lay out the options block on a scratch
//     surface, producing a [CardLayout] with every section offset and the
//     exact canvas height.
//  2. Draw: allocate the canvas at that size and paint each section at the
//     recorded offsets.
//
// Both passes receive the same [Params] value and the same set of font
// faces, so wrapping cannot diverge between them. The draw pass also checks
// the heights it consumes against the layout and fails with an internal
// error instead of silently overflowing.
//
// # Components
//
//   - [WrapLines]: greedy word wrap shared by every text block
//   - Gauge: semicircular gradient arc, ticks, needle, hub, labels, end caps
//     ([NeedleAngle], [NeedleEnd], [QualitativeLabel])
//   - Options block: label, right-aligned percentage and a pill, thin
//     rectangle or dot per option ([BarWidth], [ShapeFor])
//   - [Renderer]: composes the main card and the avatar
//
// # Usage
//
//	fs, _ := fonts.Default()
//	r, err := card.NewRenderer(card.DefaultParams(), fs)
//	if err != nil {
//	    return err
//	}
//	res, err := r.Render(ctx, req)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("main.png", res.Main, 0o644)
//
// Rendering is CPU bound and holds no shared mutable state, so a single
// Renderer may serve concurrent calls.
package card
