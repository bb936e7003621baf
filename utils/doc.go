// Package utils provides distance and time helpers shared across packages.
package utils
