// Package htmlimport converts pasted HTML into block nodes.
//
// Block elements map to node types:
//
//	p, div          paragraph
//	h1..h6          heading (level attribute)
//	blockquote      quote
//	ul > li         bulleted_list
//	ol > li         numbered_list
//	li + checkbox   todo_list (checked attribute)
//	details         toggle_list (summary is the text)
//	pre             code (language from a language-* class)
//	hr              divider
//	img             image (src, alt)
//
// Inline markup becomes delta attributes: strong/b (bold), em/i (italic),
// u (underline), s/del/strike (strikethrough), code (code) and a (href).
// Nested lists and blocks inside list items or quotes become children.
// Loose inline content is wrapped in paragraphs.
package htmlimport
