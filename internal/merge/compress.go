// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type pageOutcome int

const (
	pageAlreadyCompressed pageOutcome = iota
	pageCompressed
)

// compressPage Flate-encodes every unfiltered content stream of a page.
// Streams that already carry a filter are left alone. The page's content
// renders the same either way.
func compressPage(ctx *model.Context, pageNr int) (pageOutcome, error) {
	d, _, _, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return 0, err
	}
	if d == nil {
		return 0, errors.New("page dictionary not found")
	}

	o, found := d.Find("Contents")
	if !found || o == nil {
		return pageAlreadyCompressed, nil
	}

	refs, err := contentRefs(ctx, o)
	if err != nil {
		return 0, err
	}

	outcome := pageAlreadyCompressed
	for _, ref := range refs {
		changed, err := compressStream(ctx, ref)
		if err != nil {
			return 0, err
		}
		if changed {
			outcome = pageCompressed
		}
	}
	return outcome, nil
}

// contentRefs resolves a page's Contents entry, which is either a single
// stream reference or an array of them, possibly itself behind a reference.
func contentRefs(ctx *model.Context, o types.Object) ([]types.IndirectRef, error) {
	switch c := o.(type) {
	case types.IndirectRef:
		entry, ok := ctx.FindTableEntryForIndRef(&c)
		if !ok || entry == nil {
			return nil, fmt.Errorf("content object %s missing", c)
		}
		if arr, ok := entry.Object.(types.Array); ok {
			return contentRefs(ctx, arr)
		}
		return []types.IndirectRef{c}, nil
	case types.Array:
		refs := make([]types.IndirectRef, 0, len(c))
		for _, item := range c {
			ref, ok := item.(types.IndirectRef)
			if !ok {
				return nil, fmt.Errorf("unexpected content array element %T", item)
			}
			refs = append(refs, ref)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unexpected content object %T", o)
	}
}

// compressStream encodes one content stream in place and reports whether it
// changed.
func compressStream(ctx *model.Context, ref types.IndirectRef) (bool, error) {
	entry, ok := ctx.FindTableEntryForIndRef(&ref)
	if !ok || entry == nil {
		return false, fmt.Errorf("content stream %s missing", ref)
	}
	sd, ok := entry.Object.(types.StreamDict)
	if !ok {
		return false, fmt.Errorf("content object %s is %T, not a stream", ref, entry.Object)
	}
	if len(sd.FilterPipeline) > 0 {
		return false, nil
	}
	if sd.Raw == nil {
		return false, fmt.Errorf("content stream %s not loaded", ref)
	}

	sd.Content = sd.Raw
	sd.FilterPipeline = []types.PDFFilter{{Name: filter.Flate}}
	sd.Dict["Filter"] = types.Name(filter.Flate)
	delete(sd.Dict, "DecodeParms")
	if err := sd.Encode(); err != nil {
		return false, fmt.Errorf("encoding content stream %s: %w", ref, err)
	}

	n := int64(len(sd.Raw))
	sd.StreamLength = &n
	sd.Dict["Length"] = types.Integer(n)
	entry.Object = sd
	return true, nil
}
