// Package audit stamps creation and modification metadata on entities as they
// move through the unit of work.
package audit
