// Package parse turns raw channel responses into Go values.
//
// Every decoder reports a malformed response as *domain.ParseError and a
// missing one as domain.ErrEmptyResponse, both of which the elicitation loop
// treats as retryable.
package parse
