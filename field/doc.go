// Package field holds the scalar kinds every driver offers: text,
// number, date, datetime, time and boolean. Drivers wrap them with their
// own options and translate the Predicate returned by Build.
package field
