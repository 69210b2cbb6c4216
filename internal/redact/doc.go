// Package redact hides sensitive values.
//
// Secrets strips credentials (API keys, JWTs, private keys, cloud and
// provider tokens) from text before it leaves the machine for an LLM
// recognizer. Mask shortens finding values for terminal output and exports.
package redact
