// Package imaging handles image acquisition for detection requests: a
// process-wide decode cache keyed by file path or URL, URL fetching with a
// bounded timeout, pre-inference normalization (RGB conversion, bounded
// downscaling), and exemplar-region cropping for the image-guided path.
package imaging
