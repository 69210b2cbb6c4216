// Package scorer turns a candidate and its context signal into a Finding.
//
// Scoring is a pure function: each PII type has a base rule that picks a
// confidence level and a reason, then two modifiers may lower the result.
// Log or system keywords near a non-phone match drop it one level unless a
// supporting keyword also fired, and without entity recognition confidence
// never exceeds MEDIUM. Severity depends only on the type.
package scorer
