// Package version implements the gRPC transport of the version service.
//
// Messages are protobuf well-known types, so the service descriptor and the
// client stub are written by hand instead of generated:
//
//	Format(StringValue) StringValue          format name -> rendered format
//	Increment(Struct{part, by}) Struct       -> {value, version}
//	Absorb(Empty) StringValue                -> default format after absorb
//	Record(Empty) Struct                     -> whole version record
//	Timestamp(Empty) Timestamp               -> recorded timestamp
//
// The caller identity travels in the x-app-version-actor metadata header.
package version
