// Package validator gathers the context around each pattern match.
//
// For every candidate it looks at a window of 80 characters on either side,
// collects keywords that suggest log or system output (which make numeric
// matches less likely to be personal data) and keywords that support the
// candidate's type, and checks whether a PERSON or LOCATION entity reported
// by the recognizer falls inside the window. The recognizer runs once per
// document; when it fails the scan continues in regex-only mode.
package validator
