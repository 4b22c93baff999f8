// Package lang expands Zen-Coding style markup shorthand into a node tree.
//
// An expression is a sequence of tokens joined by positional operators.
// Each token describes one node; each operator says where the next node
// goes relative to the one just built.
//
// # Grammar
//
// Informal EBNF:
//
//	expr    → token (op token)*
//	op      → '>' | '<' | '+'
//	token   → tag? id? class* attrs? text?
//	tag     → letters ('1'..'6')?
//	id      → '#' name
//	class   → '.' name
//	attrs   → '[' kv (',' kv)* ']'
//	kv      → key '=' value
//	text    → '{' <any but '}'>+ '}'
//
// The operator '>' descends into the node just built, '<' ascends to the
// parent of the current insertion point, and '+' adds a sibling.
//
// # Example
//
//	div#page>div.logo+ul#navigation>li>a[href=/]{Home}
//
// builds
//
//	<div id="page">
//	  <div class="logo"></div>
//	  <ul id="navigation"><li><a href="/">Home</a></li></ul>
//	</div>
//
// # Data
//
// Before tokenizing, placeholders are filled from a data record:
// "$name;" becomes the record's "name" field and "%self" becomes the whole
// record. The record is first passed through [Sanitize], which strips markup
// from every string and escapes the characters the grammar treats as
// structure, so data can never introduce nodes or operators of its own.
//
// Node creation is delegated to a [dom.Tree], which makes [Expander] usable
// with any host node model.
package lang
