package store

import (
	"context"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/errdefs"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/flatpodhq/flatpod/internal/errs"
)

const (
	// DefaultAddress is the well-known containerd control socket.
	DefaultAddress = "/run/containerd/containerd.sock"

	// DefaultNamespace scopes all of flatpod's images, content, and
	// leases to a single containerd namespace so they never collide
	// with images managed by other containerd clients on the same host.
	DefaultNamespace = "flatpod"
)

// A content-addressed object store backed by a containerd client. Refs are
// containerd image tags; commits are single-layer OCI manifests whose
// layer is the tree the commit represents.
type Store struct {
	client *containerd.Client
}

// Connects to the containerd socket at address, scoping every operation to
// namespace. The store must be closed when no longer needed.
func New(address, namespace string) (*Store, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, errs.Wrap(ErrStore, err)
	}
	return &Store{client: client}, nil
}

// Closes the underlying containerd client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// A commit: an OCI manifest whose single layer is the tree it represents.
type Commit struct {
	Manifest ocispec.Descriptor
}

// Resolves ref to the commit it currently points at. Returns ErrNotFound
// if ref does not exist.
func (s *Store) Resolve(ctx context.Context, ref string) (Commit, error) {
	img, err := s.client.ImageService().Get(ctx, ref)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return Commit{}, ErrNotFound
		}
		return Commit{}, errs.Wrap(ErrStore, err)
	}
	return Commit{Manifest: img.Target}, nil
}
