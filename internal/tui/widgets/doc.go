// Package widgets contains dumb render primitives.
//
// Allowed here: stateless drawing and composition helpers (boxes, stacks,
// plots). Key handling and app state live in the tui and panels packages.
package widgets
