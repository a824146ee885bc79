// package ui implements the interactive check flow as a bubbletea program.
//
// The model owns no submission state of its own; it mirrors controller
// snapshots and translates key presses into acquisition and submission
// commands.
package ui
