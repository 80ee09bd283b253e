// Package projection maps selected columns of a query onto narrow read
// models: interface views with computed fields, or flat value objects.
package projection
