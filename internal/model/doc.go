// Package model binds the detect package's Model/Processor contracts to an
// HTTP inference backend. The backend runs the vision-language model and
// returns raw, unthresholded candidates; everything cheap enough to repeat
// (image normalization, confidence filtering, coordinate scaling, NMS)
// happens locally in this package.
package model
