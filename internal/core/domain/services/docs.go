// Package services contains stateless domain services that combine several
// aggregates or value objects into one business computation.
package services
