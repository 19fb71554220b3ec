// Package websearch defines the web search provider contract and the
// guard the detection engine dispatches through.
//
// Providers live in sub-packages (websearch/serper) and may fail;
// the Guard converts every failure into an empty candidate list so a
// broken or unconfigured provider degrades detection instead of
// aborting it.
package websearch
