// Package model defines the website report document consumed by webrisk.
//
// The types in this package mirror the report produced by the upstream
// reputation service: category flags, security checks, the numeric risk
// result, redirect information, server details, geolocation and the
// blacklist summary. They are read-only inputs; every derived value lives
// in the view package.
//
// Reports can be decoded from JSON or YAML. Flag records tolerate loosely
// typed values (numbers, strings) and the risk score tolerates being absent,
// null or non-numeric, so that a slightly malformed document still renders.
package model
