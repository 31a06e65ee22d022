// Package registry holds the immutable set of reference images that
// candidates are matched against.
package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"imagedetective/imageprocessor"
	"imagedetective/logging"
	"imagedetective/types"
)

// Options controls how a registry is built
type Options struct {
	// Extensions is the allow-list of file extensions, DefaultExtensions if empty
	Extensions []string

	// Workers bounds concurrent decoding, 1 if not positive
	Workers int

	Signature imageprocessor.SignatureOptions

	// OnRegistered is called once per target in registration order after the
	// registry is complete
	OnRegistered func(types.TargetRecord)
}

// Registry is an ordered, read-only collection of targets. It is safe for
// concurrent readers once built.
type Registry struct {
	records []types.TargetRecord
	images  []*imageprocessor.Image
	index   map[string]int

	closeOnce sync.Once
}

// Build registers every allow-listed file directly inside dir, in
// lexicographic order of file name. Files that fail to decode are still
// registered with unknown fields. Only directory errors are returned.
func Build(ctx context.Context, dir string, opts Options) (*Registry, error) {
	paths, err := imageprocessor.ListImageFiles(dir, imageprocessor.NewExtensionFilter(opts.Extensions))
	if err != nil {
		return nil, logging.NewOperationError("register targets", dir, err)
	}

	logging.DebugLog("registering %d target files from %s", len(paths), dir)

	records := make([]types.TargetRecord, len(paths))
	images := make([]*imageprocessor.Image, len(paths))

	workers := max(opts.Workers, 1)
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			records[i], images[i] = loadTarget(path, opts.Signature)
		}(i, path)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		closeImages(images)
		return nil, err
	}

	reg, err := newRegistry(records, images)
	if err != nil {
		closeImages(images)
		return nil, err
	}

	if opts.OnRegistered != nil {
		reg.Each(opts.OnRegistered)
	}
	return reg, nil
}

// FromRecords builds a registry from existing records, keeping their order.
// Pixels are loaded from each record's path when possible.
func FromRecords(records []types.TargetRecord) (*Registry, error) {
	recs := make([]types.TargetRecord, len(records))
	copy(recs, records)

	images := make([]*imageprocessor.Image, len(recs))
	for i, rec := range recs {
		if rec.Path == "" {
			continue
		}
		img, err := imageprocessor.LoadImage(rec.Path)
		if err != nil {
			logging.DebugLog("target %s has no pixels: %v", rec.ID, err)
			continue
		}
		images[i] = img
	}

	reg, err := newRegistry(recs, images)
	if err != nil {
		closeImages(images)
		return nil, err
	}
	return reg, nil
}

func newRegistry(records []types.TargetRecord, images []*imageprocessor.Image) (*Registry, error) {
	index := make(map[string]int, len(records))
	for i, rec := range records {
		if _, dup := index[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate target identifier %q", rec.ID)
		}
		index[rec.ID] = i
	}
	return &Registry{records: records, images: images, index: index}, nil
}

// loadTarget derives the signature and decodes the pixels of one file.
// A decode failure leaves the image nil.
func loadTarget(path string, opts imageprocessor.SignatureOptions) (types.TargetRecord, *imageprocessor.Image) {
	rec := types.TargetRecord{
		ID:        filepath.Base(path),
		Path:      path,
		Signature: imageprocessor.ExtractSignature(path, opts),
	}

	img, err := imageprocessor.LoadImage(path)
	if err != nil {
		logging.LogImageProcessed(path, false, err.Error())
		return rec, nil
	}
	rec.Signature.Fingerprint = img.Fingerprint()
	// cached so every query reuses the same edge map
	img.Edges()

	logging.LogImageProcessed(path, true, "")
	return rec, img
}

// Len returns the number of targets
func (r *Registry) Len() int { return len(r.records) }

// Get returns the target registered under id
func (r *Registry) Get(id string) (types.TargetRecord, bool) {
	i, ok := r.index[id]
	if !ok {
		return types.TargetRecord{}, false
	}
	return r.records[i], true
}

// Records returns a copy of all targets in registration order
func (r *Registry) Records() []types.TargetRecord {
	out := make([]types.TargetRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Each calls fn for every target in registration order
func (r *Registry) Each(fn func(types.TargetRecord)) {
	for _, rec := range r.records {
		fn(rec)
	}
}

// Image returns the decoded pixels of a target, nil if they could not be
// decoded
func (r *Registry) Image(id string) *imageprocessor.Image {
	i, ok := r.index[id]
	if !ok {
		return nil
	}
	return r.images[i]
}

// Close releases all decoded target images
func (r *Registry) Close() {
	r.closeOnce.Do(func() { closeImages(r.images) })
}

func closeImages(images []*imageprocessor.Image) {
	for _, img := range images {
		img.Close()
	}
}
