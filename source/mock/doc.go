// Package mock provides a configurable test double for source.Source.
package mock
