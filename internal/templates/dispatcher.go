package templates

import (
	"bytes"
	"text/template"
)

// DispatcherData holds the names a dispatcher scaffold refers to.
type DispatcherData struct {
	// VariantsBarrel is the file name of the group's variants barrel.
	VariantsBarrel string

	// NotFound is the component rendered when no variant matches.
	NotFound string
}

var dispatcherTmpl = template.Must(template.New("dispatcher").Parse(`<script>
	import variants, { fallback } from "./{{.VariantsBarrel}}";
	import { {{.NotFound}} } from "./";

	export let params = {};

	const normalize = (page) => String(page).toLowerCase().replace(/[-+:]/g, "_");
	const own = (key) => Object.prototype.hasOwnProperty.call(variants, key);

	$: key = params && params.page ? normalize(params.page) : fallback;
	$: page = own(key) ? variants[key] : null;
</script>

{#if page}
	<svelte:component this={page} {params} />
{:else}
	<{{.NotFound}} />
{/if}
`))

// Dispatcher renders the dispatcher scaffold of a page group.
func Dispatcher(data DispatcherData) ([]byte, error) {
	var buf bytes.Buffer
	if err := dispatcherTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
