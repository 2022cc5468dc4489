// Package fieldmap projects raw timeline entities onto flat records.
//
// A Spec lists output fields, each read from a dotted path
// ("otherinfo.startTime", "primaryfilters.user.0") or computed by an
// Extractor. Specs are validated when built, so a malformed path is caught
// before any payload is seen. Missing paths are not errors: the field is
// simply absent from the resulting Record.
package fieldmap
