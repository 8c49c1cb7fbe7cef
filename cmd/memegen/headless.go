package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/dimonomid/memegen/catalog"
	"github.com/dimonomid/memegen/export"
	"github.com/dimonomid/memegen/meme"
	"github.com/juju/errors"
)

// resolveTemplate finds the template by the spec (see catalog.Manager.Find);
// the catalog is only loaded if the spec is not a URL or a path.
func resolveTemplate(ctx context.Context, mgr *catalog.Manager, spec string) (catalog.Template, error) {
	if t, err := mgr.Find(spec); err == nil {
		return t, nil
	}

	state := mgr.Load(ctx)

	t, err := mgr.Find(spec)
	if err != nil {
		if state.Err != nil {
			return catalog.Template{}, errors.Annotatef(err, "%s", state.Err.Error())
		}

		return catalog.Template{}, errors.Trace(err)
	}

	return t, nil
}

// renderToFile renders the Document and writes the PNG to out; "-" means
// stdout.
func renderToFile(
	ctx context.Context, renderer export.Renderer, doc meme.Document, out string, stdout io.Writer,
) error {
	data, err := renderer.RenderPNG(ctx, doc)
	if err != nil {
		return errors.Trace(err)
	}

	if out == "-" {
		if _, err := stdout.Write(data); err != nil {
			return errors.Annotatef(err, "writing to stdout")
		}

		return nil
	}

	if err := ioutil.WriteFile(out, data, 0644); err != nil {
		return errors.Annotatef(err, "writing %s", out)
	}

	return nil
}

// listTemplates loads the catalog and returns the templates matching the
// query, or all of them if the query is empty.
func listTemplates(ctx context.Context, mgr *catalog.Manager, query string) ([]catalog.Template, error) {
	state := mgr.Load(ctx)
	if len(state.AllMemes) == 0 {
		if state.Err != nil {
			return nil, errors.Trace(state.Err)
		}

		return nil, errors.Trace(catalog.ErrNoTemplatesSelectable)
	}

	if query == "" {
		return state.AllMemes, nil
	}

	return catalog.Search(state.AllMemes, query, catalog.DefaultSearchLimit), nil
}

func printTemplates(w io.Writer, templates []catalog.Template) {
	idWidth := 0
	for _, t := range templates {
		if len(t.ID) > idWidth {
			idWidth = len(t.ID)
		}
	}

	for _, t := range templates {
		fmt.Fprintf(w, "%-*s  %-40s  %s\n", idWidth, t.ID, t.Name, t.URL)
	}
}

type headlessParams struct {
	svc *services

	doc meme.Document

	// templateSpec, if not empty, is resolved and overrides doc.ImageURL.
	templateSpec string

	// out is where to write the PNG.
	out string

	// list, if true, means printing templates instead of rendering; query
	// filters them.
	list  bool
	query string

	stdout io.Writer
}

func runHeadless(ctx context.Context, params headlessParams) error {
	if params.list {
		templates, err := listTemplates(ctx, params.svc.catalog, params.query)
		if err != nil {
			return errors.Trace(err)
		}

		printTemplates(params.stdout, templates)
		return nil
	}

	doc := params.doc
	if params.templateSpec != "" {
		t, err := resolveTemplate(ctx, params.svc.catalog, params.templateSpec)
		if err != nil {
			return errors.Trace(err)
		}

		doc = doc.WithImageURL(t.URL)
	}

	if err := renderToFile(ctx, params.svc.compositor, doc, params.out, params.stdout); err != nil {
		return errors.Trace(err)
	}

	if params.out != "-" {
		fmt.Fprintf(os.Stderr, "Saved to %s\n", params.out)
	}

	return nil
}
