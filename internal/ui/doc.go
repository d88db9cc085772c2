// Package ui provides terminal output components for the brlreview and
// brlreview-display commands.
//
// This package uses Lipgloss to render styled output for one-shot commands.
// Unlike the interactive review TUI, these components render once and
// require no user interaction.
//
// # Components
//
//   - Header: command banner showing the operation name and parameters
//   - Listing: flat review lines with the review cursor line marked
//   - Progress: checklist with a progress bar, filled by RunChecks
//   - Result: success, failure and warning boxes
//
// Printer writes any of them to a writer at the terminal width:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Flat review", "brlreview lines", ui.Param{Key: "Scene", Value: path})
//	p.PrintListing(ui.NewListing(lines, cursor))
//
// # Logging Integration
//
// Logging is controlled with the BRLREVIEW_LOG_LEVEL environment variable or
// the --log-level flag. When neither is set, zap logging is silent and only
// the curated output is shown.
//
// The palette and shared styles in styles.go are reused by the review TUI
// and the braille monitor so that every screen looks the same.
package ui
