// Package acl is the anti-corruption layer between upstream quote APIs and
// the domain. Upstream payloads are decoded into unexported types and
// translated to [domain.ImportedQuote]; every upstream or transport failure
// surfaces as [domain.ErrUnavailable] so callers never see wire details.
package acl
