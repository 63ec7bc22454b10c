// Package reference keeps a node's stored variable references in
// sync with {nodeId.varName} tokens embedded in its free-text
// configuration fields.
//
// Extraction is permissive: tokens that do not resolve to an
// available upstream variable stay in the text as literals but
// produce no reference record, since the user may be mid-typing.
package reference

import (
	"regexp"
	"strings"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
)

// tokenPattern matches {nodeId.varName}. Both segments are one or
// more characters excluding braces; the greedy first segment claims
// any interior dots, leaving the last dot as the separator.
var tokenPattern = regexp.MustCompile(`\{([^{}]+)\.([^{}]+)\}`)

// Extract scans text for reference tokens and returns the validated
// references in order of first occurrence.
//
// A token is accepted only when its (nodeId, varName) pair appears in
// the available variable set. Duplicate pairs keep the first
// occurrence. Malformed or unknown tokens are silently dropped.
func Extract(text string, available []flowcanvas.NodeVariables) []flowcanvas.VariableReference {
	var refs []flowcanvas.VariableReference
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		nodeID, varName := m[1], m[2]
		if !flowcanvas.Contains(available, nodeID, varName) {
			continue
		}
		dup := false
		for _, r := range refs {
			if r.NodeID == nodeID && r.NodeParamName == varName {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		refs = append(refs, flowcanvas.VariableReference{
			NodeID:        nodeID,
			NodeParamName: varName,
			Name:          varName,
		})
	}
	return refs
}

// Variable identifies a single insertable upstream variable.
type Variable struct {
	NodeID string
	Name   string
}

// token renders the canonical text form of the variable.
func (v Variable) token() string {
	return "{" + v.NodeID + "." + v.Name + "}"
}

// Insert places a canonical reference token into text at the cursor.
//
// If an unclosed '{' precedes the cursor, the span from that brace
// through the cursor is replaced by the token (completing a partially
// typed reference). Otherwise the token is inserted at the cursor.
// Returns the new text and the cursor position immediately after the
// closing brace.
func Insert(text string, cursor int, v Variable) (string, int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}

	token := v.token()
	before := text[:cursor]
	after := text[cursor:]

	if open := strings.LastIndex(before, "{"); open >= 0 && !strings.Contains(before[open:], "}") {
		newText := text[:open] + token + after
		return newText, open + len(token)
	}

	newText := before + token + after
	return newText, cursor + len(token)
}

// Linker ties a store and analyzer together: it computes the
// available variables for a node, extracts references from its text,
// and writes the validated list back to the store.
type Linker struct {
	store    *flowcanvas.Store
	analyzer *flowcanvas.Analyzer
}

// NewLinker creates a linker over the given store and analyzer.
func NewLinker(store *flowcanvas.Store, analyzer *flowcanvas.Analyzer) *Linker {
	return &Linker{store: store, analyzer: analyzer}
}

// Relink extracts references from text against nodeID's available
// variables and stores them as the node's RefInputs. Returns the
// extracted references, or the store's lookup error.
func (l *Linker) Relink(nodeID, text string) ([]flowcanvas.VariableReference, error) {
	refs := Extract(text, l.analyzer.AvailableVariables(nodeID))
	if err := l.store.SetRefInputs(nodeID, refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// RelinkDebounced schedules a Relink through the debouncer, so rapid
// keystrokes collapse into one extraction against the final text.
// The stored reference list may lag the text by one debounce
// interval; that latency is the accepted trade-off.
func (l *Linker) RelinkDebounced(d *Debouncer, nodeID, text string) {
	d.Trigger(func() {
		// Best effort: the node may have been deleted while the
		// timer was pending.
		_, _ = l.Relink(nodeID, text)
	})
}
