// Package schema derives JSON Schemas from Go types and validates model
// output against them.
//
// Basic usage:
//
//	s := schema.For[domain.MarketResearch]()
//	doc, err := schema.ExtractJSON(reply)
//	if err == nil {
//	    err = schema.Validate(s, doc)
//	}
//
// Schemas are reflected once per type and compiled validators are cached, so
// both calls are cheap on the hot path.
package schema
