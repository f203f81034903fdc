// Package pipeline runs the project generator as an ordered list of named
// steps. Each step receives the current State and returns the next one;
// the Runner stops at the first failure and marks the remaining steps as
// skipped. Generator wires the concrete steps (environment check, prompt,
// app creation, dependency install, template copy, cleanup, repository
// init) from their collaborators.
package pipeline
