// Package database provides the HTTP client for the Mbed online board
// database.
//
// This package is internal to mbedtargets. It performs a single GET per call
// and decodes the {"data": [...]} envelope into raw records. It does not
// retry or cache; both are left to the caller.
//
// Users of the mbedtargets library should not need to interact with this
// package directly. Configuration is done through the main mbedtargets package.
package database
