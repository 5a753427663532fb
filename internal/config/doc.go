// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates the labpod configuration.
//
// Configuration comes from three layers, lowest precedence first: built-in
// defaults matching the platform image layout, an optional CUE config file
// validated against an embedded schema, and LABPOD_-prefixed environment
// variables. The entrypoint runs with zero configuration inside standard
// images; the config file exists for non-standard layouts and tests.
package config
