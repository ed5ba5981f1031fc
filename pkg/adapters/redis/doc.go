// Package redis stores transcripts in Redis with optional expiry.
package redis
