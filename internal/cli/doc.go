// Package cli handles command-line argument parsing and validation for
// the gridvm binary, translating flags into an app.Config.
package cli
