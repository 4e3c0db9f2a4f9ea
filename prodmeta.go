// Package prodmeta extracts structured product metadata from e-commerce
// product pages. Each page is rendered to markdown, handed to a language
// model constrained by a fixed schema, and normalized into a Product.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, gemini/, htmltomarkdown/).
package prodmeta
