// Package contraction translates text into contracted braille using
// YAML tables of word signs and letter groups.
//
// Output is braille ASCII. Built-in tables are embedded; more can be
// loaded from a directory with LoadDir.
package contraction
