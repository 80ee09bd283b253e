// Package controller exposes the member repository over HTTP with gin.
package controller
