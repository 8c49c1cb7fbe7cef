package editor

import (
	"github.com/dimonomid/memegen/catalog"
	"github.com/dimonomid/memegen/export"
	"github.com/dimonomid/memegen/render"
	"github.com/juju/errors"
)

var advisories = map[error]string{
	catalog.ErrCatalogUnavailable:    "Failed to load memes. Please try again later.",
	catalog.ErrNoTemplatesSelectable: "No memes available. Please reload the template list (:reload).",
	render.ErrImageLoadFailed:        "Failed to load the template image. Please try another template.",
	render.ErrExportEncodingFailed:   "Failed to create image. Please try again.",
	export.ErrClipboardOrShareFailed: "Failed to copy to clipboard. Please try again.",
}

// Advisory returns the plain-language message shown to the user for the
// error. Errors outside of the known set get a generic message which
// includes the error itself.
func Advisory(err error) string {
	if err == nil {
		return ""
	}

	if msg, ok := advisories[errors.Cause(err)]; ok {
		return msg
	}

	return "Something went wrong: " + err.Error()
}
