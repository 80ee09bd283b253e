// Package dto holds flat read models returned by queries and the HTTP layer.
package dto
