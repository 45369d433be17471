// Package retry runs an operation a fixed number of times with a constant
// pause between attempts.
package retry
