// Package highlight provides support to highlight source code blocks.
// It uses the Chroma library to do this work.
//
// Code is highlighted by language name,
// for example "python" for member signatures
// or the info string of a fenced code block.
// Languages Chroma does not know are rendered as plain escaped text.
package highlight
