// Package samples holds built-in simulated paste dumps. They stand in for
// scraped paste sites and double as demo inputs and regression fixtures.
package samples
