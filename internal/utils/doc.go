// Package utils holds input checks applied at the HTTP boundary: path ids,
// name patterns and terminal sizes. Run configurations themselves are
// never validated.
package utils
