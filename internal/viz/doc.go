// Package viz renders run results in the terminal: lipgloss styled key/value
// blocks and asciigraph line plots.
package viz
