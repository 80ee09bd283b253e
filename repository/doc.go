// Package repository provides typed repositories over Bun with an explicit
// unit of work, derived and specification queries, paging, slicing,
// projections and upsert support.
package repository
