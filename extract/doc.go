// Package extract reads plain text out of document files for
// detection and corpus building. Plain text and PDF are supported.
package extract
