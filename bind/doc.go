// Package bind fills rendered views with record data.
//
// A view marks its slots with data attributes. An element carrying
// data-binding receives the named field of the record, written the way the
// element expects it: checkbox state, form value, or text content. The name
// %self binds the record itself, or with data-value-string, a text built
// from several of its fields:
//
//	<span data-binding="%self" data-value-string="%first; %last;"></span>
//
// An element carrying data-children-binding is a container. For each
// element of the named sequence field it expands a template from the
// [Registry], binds the result to that element and appends it:
//
//	<ul data-children-binding="items" data-template="item"
//	    data-template-context="role:guest"
//	    data-children-footer="total"></ul>
//
// data-template-map names a conditional map instead, choosing the template
// per element. The optional context string supplies defaults for the fields
// of each element, and the footer template is expanded once against the
// container's own record.
//
// Templates and conditional maps are registered in code or loaded from a
// YAML or JSON [Catalog].
package bind
