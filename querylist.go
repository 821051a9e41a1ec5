// Package querylist extracts structured records from parsed HTML documents
// using declarative, selector-based rules.
//
// A rule set maps field names to a selector, an extraction mode (text,
// texts, html, exists or an attribute name) and an optional tag filter. An
// optional range selector partitions the document into repeated items so
// that one record is produced per item.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package querylist
