// Package util provides small generic helpers shared across cradle packages.
package util
