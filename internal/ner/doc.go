// Package ner finds named entities (people, places, organisations) in text.
//
// The validator only needs to know whether a PERSON or LOCATION mention sits
// near a pattern match, so every backend is reduced to the [Recognizer]
// interface: given a document, return labelled byte spans. Three backends
// exist:
//
//   - [Noop] reports [ErrUnavailable] and puts the scanner in regex-only mode.
//   - [LLM] asks a chat model (see internal/providers) for a JSON entity list.
//   - [ONNX] runs a local BERT-style token-classification model.
//
// [Cached] wraps any backend with the on-disk cache, and [Static] returns a
// fixed entity list for tests.
package ner
