package tui

// UI Text Constants
const (
	TextFooterReady = "Type a term and press Enter to search (case-sensitive) | Esc or Ctrl+C to quit"
	TextFooterBusy  = "Esc or Ctrl+C to quit"
)
