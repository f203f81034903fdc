// Package manifest merges the starter configuration (scripts, lint, git
// hooks) into a generated package.json and checks the result against an
// embedded JSON schema.
package manifest
