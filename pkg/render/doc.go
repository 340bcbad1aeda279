// Package render groups the image producers of pollcard.
//
//   - [card]: the result card (header, wrapped question, gauge panel,
//     option bars, footer) and the square avatar
//   - [effects]: post-processing of rendered images, currently a seeded
//     glitch effect
//
// Rendering is raster only: cards are drawn with fogleman/gg onto RGBA
// canvases and encoded as PNG.
//
// [card]: github.com/matzehuels/pollcard/pkg/render/card
// [effects]: github.com/matzehuels/pollcard/pkg/render/effects
package render
