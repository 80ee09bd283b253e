// Package query builds filter predicates for repository lookups, either from
// method-style descriptors validated at registration or from specifications,
// and compiles them into Bun select, update and delete clauses.
package query
