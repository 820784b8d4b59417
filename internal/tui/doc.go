// Package tui is the interactive terminal front end of the Lookup View.
//
// It is a bubbletea program hosting a view.View. Key presses become view
// calls, and the view signals every transition back to the program so the
// screen is redrawn from the view's state. Lookups run on the view's own
// goroutines, so the input stays responsive while they are in flight.
package tui
