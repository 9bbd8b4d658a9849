package store

import (
	"context"

	"github.com/containerd/containerd/v2/core/content"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/flatpodhq/flatpod/internal/errs"
)

// Stats about a completed Prune.
type PruneStats struct {
	ObjectsFound   int
	ObjectsDeleted int
	BytesDeleted   int64
}

// Deletes every content-store object not reachable from a currently
// existing ref (image tag). Since refs are deleted before Prune is called
// (as part of the same janitor run), this recovers the space held by
// commits, layers, and configs that no ref points at anymore, directly or
// transitively.
func (s *Store) Prune(ctx context.Context) (PruneStats, error) {
	reach, err := s.reachableDigests(ctx)
	if err != nil {
		return PruneStats{}, errs.Wrap(ErrStore, err)
	}

	cs := s.client.ContentStore()
	var stats PruneStats
	var toDelete []digest.Digest

	err = cs.Walk(ctx, func(info content.Info) error {
		stats.ObjectsFound++
		if _, ok := reach[info.Digest]; !ok {
			toDelete = append(toDelete, info.Digest)
			stats.BytesDeleted += info.Size
		}
		return nil
	})
	if err != nil {
		return stats, errs.Wrap(ErrStore, err)
	}

	for _, d := range toDelete {
		if err := cs.Delete(ctx, d); err != nil && !errdefs.IsNotFound(err) {
			return stats, errs.Wrap(ErrStore, err)
		}
		stats.ObjectsDeleted++
	}

	return stats, nil
}

// Computes the set of content digests reachable from any currently
// existing image (ref), walking manifests/configs/layers via
// images.Children.
func (s *Store) reachableDigests(ctx context.Context) (map[digest.Digest]struct{}, error) {
	imgs, err := s.client.ImageService().List(ctx)
	if err != nil {
		return nil, err
	}

	provider := s.client.ContentStore()
	reach := make(map[digest.Digest]struct{})

	var walk func(desc ocispec.Descriptor) error
	walk = func(desc ocispec.Descriptor) error {
		if _, ok := reach[desc.Digest]; ok {
			return nil
		}
		reach[desc.Digest] = struct{}{}

		children, err := images.Children(ctx, provider, desc)
		if err != nil {
			if errdefs.IsNotFound(err) {
				return nil
			}
			return err
		}
		for _, c := range children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	for _, img := range imgs {
		if err := walk(img.Target); err != nil {
			return nil, err
		}
	}
	return reach, nil
}
