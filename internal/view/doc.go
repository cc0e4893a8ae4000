// Package view builds the display-ready model of a website report panel.
//
// Build is a pure function: it reads a model.WebsiteReport and a target URL
// and returns a Panel holding every value a renderer needs (category labels,
// the risk tier and safety percentage, the pass/fail check summary, server
// and geolocation rows, the sorted blacklist engines and third-party image
// URLs). Nothing in this package performs I/O, and calling Build twice with
// the same input yields identical output.
//
// The label tables for categories and security checks are fixed at compile
// time. Truthy flags without a table entry are left out of the panel; use
// UnmappedCategories and UnmappedChecks to find them.
package view
