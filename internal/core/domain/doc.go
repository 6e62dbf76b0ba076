// Package domain holds pillmate's core types: reference medicine records,
// match candidates and their score weights, drug-safety documents grouped
// by category, settings, and the sentinel errors shared by every layer.
//
// It imports only the standard library; every other package depends on it.
package domain
