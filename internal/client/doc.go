// Package client is the Go client of the run configuration daemon's HTTP
// API, used by runctl.
package client
