// Package hcl provides the concrete HCL implementation of the
// program.Loader interface. It is responsible for file discovery,
// parsing, HCL-to-model translation and cty-to-native data conversion.
package hcl
