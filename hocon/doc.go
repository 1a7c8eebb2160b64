// FILE: lixenwraith/config/hocon/doc.go
// Package hocon reads and writes a HOCON-style configuration notation into a
// flattened path store.
//
// Documents are made of nested objects, scalar and array values, substitutions
// between entries, object inheritance and file includes:
//
//	# defaults shared by every client
//	base {
//	    port : 80
//	    tls  : off
//	}
//
//	client : $(base) {
//	    url  : "http://127.0.0.1"
//	    tls  : on
//	}
//
//	backup : ${?site.backup_url}
//	include "local"
//
// The Reader never builds a tree. Every object and value is written to a Store
// under its dot-joined path ("client.url"), with object scopes recorded as Node
// markers. Any keyed storage can implement Store; MapStore is the in-memory
// implementation.
//
// Value types stored by the reader:
//
//	string           quoted or bare text
//	int64            123, -7
//	decimal.Decimal  1.25, 1e5
//	bool             on/off, true/false, yes/no, enabled/disabled
//	[]any            [1, 2.5, "x", on]
//	Node             object scope marker
//
// Substitutions come in two forms. $(name) and ${name} must resolve; a
// substitution that names an object in assignment position copies the whole
// subtree (extends) and may be followed by a block of overrides. $(?name) and
// ${?name} silently drop the assignment when nothing is found.
//
// Write renders any set of entries back to canonical, sorted, tab-indented text.
package hocon
