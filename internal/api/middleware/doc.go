// Package middleware provides HTTP middleware for the live view server:
// CORS for browser viewers on other origins and a per-IP rate limiter.
package middleware
