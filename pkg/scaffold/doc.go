// Package scaffold validates project names and renders minimal project
// templates for the allframe CLI.
package scaffold
