// Package manifest implements the Manifest Reader: decoding the
// manifest.json and image config JSON that the Puller stages under
// ociimage/<escape(image)>, and the token form of a digest used to name
// the per-layer and per-config object-store refs.
package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/flatpodhq/flatpod/internal/errs"
	"github.com/flatpodhq/flatpod/internal/store"
)

// A decoded OCI manifest, reduced to what the layout builder and janitor
// need: the ordered layer digests and the config digest.
type Manifest struct {
	LayerDigests []digest.Digest
	ConfigDigest digest.Digest
}

// A decoded OCI image config, reduced to what the layout builder needs.
type Config struct {
	Architecture string
	Env          map[string]string
	Cmd          []string
}

// The filesystem-safe token derived from a digest, used as the suffix of
// an ociimage/<token> ref: the hex-encoded hash with the "sha256:" (or
// other algorithm) prefix stripped.
func Token(d digest.Digest) string {
	return d.Encoded()
}

// Reads and decodes manifest.json from dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, errs.Wrap(ErrManifest, err)
	}
	return ParseManifestJSON(data)
}

// Decodes a raw OCI manifest document.
func ParseManifestJSON(data []byte) (*Manifest, error) {
	var m ocispec.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(ErrManifest, err)
	}

	layers := make([]digest.Digest, len(m.Layers))
	for i, l := range m.Layers {
		layers[i] = l.Digest
	}

	return &Manifest{LayerDigests: layers, ConfigDigest: m.Config.Digest}, nil
}

// The subset of *store.Store this package needs to read a manifest
// without checking out its tree to disk. *store.Store satisfies this with
// no adapter; it exists so callers can substitute a fake for tests.
type StoreReader interface {
	Resolve(ctx context.Context, ref string) (store.Commit, error)
	ReadFile(ctx context.Context, c store.Commit, path string) ([]byte, error)
}

// Reads and decodes an OCI manifest directly from an object-store ref,
// without checking out its tree to disk. Used by the janitor to trace an
// installed runtime's originating image down to its layer and config
// digests.
func ReadManifestFromStore(ctx context.Context, st StoreReader, ref string) (*Manifest, error) {
	c, err := st.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	data, err := st.ReadFile(ctx, c, "manifest.json")
	if err != nil {
		return nil, err
	}
	return ParseManifestJSON(data)
}

// Reads and decodes the image config JSON staged as "content" in dir.
func ReadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, "content"))
	if err != nil {
		return nil, errs.Wrap(ErrManifest, err)
	}
	return ParseConfigJSON(data)
}

// Decodes a raw OCI image config document.
func ParseConfigJSON(data []byte) (*Config, error) {
	var img ocispec.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, errs.Wrap(ErrManifest, err)
	}

	env := make(map[string]string, len(img.Config.Env))
	for _, e := range img.Config.Env {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		env[k] = v
	}

	return &Config{
		Architecture: img.Architecture,
		Env:          env,
		Cmd:          img.Config.Cmd,
	}, nil
}
