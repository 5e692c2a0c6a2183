// Package model maps planner entities to SQL and runs them on the guarded
// store connection.
//
// The engine is a small set of generic verbs (Create, CreateReturn,
// CreateMultiple, Get, First, List, Delete) parameterised by a Table or a
// Descriptor. Entity controllers (Plans, Users, UserDates) are thin wrappers
// that bind a descriptor and add entity-specific lookups.
//
// Every create verb runs the payload through the system field injector, so
// managed columns such as ctime and web_id are always set by the engine and
// never by callers.
package model
