// Package golua is a script backend built on Shopify/go-lua.
//
// It implements the same capability.Engine contract as the gopher-lua
// backend so the host can switch interpreters without changing plugins.
// Capability tables and resolved callables are anchored in the Lua registry
// under per-plugin keys; closing an API removes them.
package golua
