// Package detect implements the detection orchestrators around an external
// vision-language model.
//
// The model is reached through two small interfaces, Model and Processor,
// mirroring the split between the expensive step (inference) and the cheap
// ones (input preparation, confidence filtering, coordinate scaling). The
// text-guided orchestrator exploits that split: when a request finds nothing
// at the caller's confidence threshold, it walks a ladder of progressively
// looser thresholds re-filtering the single cached inference output, so the
// model is never invoked twice for one request.
//
// An exhausted ladder is a first-class empty result carrying diagnostics,
// not an error. Errors are reserved for malformed input and genuine
// model/backend failures.
package detect
