// Package rasterize wraps the pdftocairo binary to render single document
// pages as raster images for tag decoding.
package rasterize
