// Package entity declares the persisted models: members, the teams they belong
// to, and client-keyed items.
package entity
