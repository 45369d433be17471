// Package services holds the SQL clients for the control, broker and
// tracking services. Connection strings are sqlite paths, optionally
// prefixed with sqlite://.
package services
