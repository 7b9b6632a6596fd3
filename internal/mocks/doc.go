// Package mocks provides hand-written test doubles for the store interfaces.
// Each mock exposes function fields for customizable behavior and falls back
// to a simple in-memory implementation when a field is nil.
package mocks
