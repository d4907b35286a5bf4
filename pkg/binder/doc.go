// Package binder populates request structs for handler.Wrap.
//
// JSON decodes a strict JSON body. Path and Query fill string fields tagged
// `path:"name"` and `query:"name"`; fields tagged "-" are skipped. A binder
// that does not apply to a request returns ErrBinderNotApplicable and is
// skipped by handler.Wrap.
package binder
