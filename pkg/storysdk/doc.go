// Package storysdk bootstraps the ipaccount and license clients from
// environment variables conventionally set for Story gateway consumers, or
// from a YAML config file. When no gateway URL is available the helpers
// produce in-memory mocks that remain API compatible with the HTTP clients,
// optionally pre-populated from JSON seed files.
package storysdk
