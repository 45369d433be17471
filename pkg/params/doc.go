// Package params provides the case-insensitive parameter store shared by
// all manager components, and the names of the parameters they read.
package params
