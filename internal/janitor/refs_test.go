package janitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/flatpodhq/flatpod/internal/image"
	"github.com/flatpodhq/flatpod/internal/store"
)

// An in-memory refStore, used so this package's own tests never need a
// real containerd daemon, the way puller_test.go and flatpak_test.go use
// fake binaries so theirs never need the real external tools.
type fakeStore struct {
	refs  map[string]store.Commit
	files map[digest.Digest]map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		refs:  make(map[string]store.Commit),
		files: make(map[digest.Digest]map[string][]byte),
	}
}

func (f *fakeStore) commit(name string) store.Commit {
	return store.Commit{Manifest: ocispec.Descriptor{Digest: digest.Digest("sha256:" + name)}}
}

// Registers a runtime ref whose tree contains files/.flatpod-info stamped
// with rawImage, the way layout.Commit and layout.WriteFlatpodInfo leave
// it for a real conversion.
func (f *fakeStore) addRuntime(ref, rawImage string) {
	c := f.commit(ref)
	f.refs[ref] = c
	f.files[c.Manifest.Digest] = map[string][]byte{
		"files/.flatpod-info": []byte("[Image]\nname=" + rawImage + "\n"),
	}
}

// Registers the ociimage/<escape(rawImage)> ref holding manifest.json, plus
// one ociimage/<token> ref per layer and config digest it names, the way
// the Puller and layout.Checkout leave them.
func (f *fakeStore) addOCIImage(rawImage string, layers []digest.Digest, config digest.Digest) {
	imageRef := "ociimage/" + image.Escape(rawImage)
	c := f.commit(imageRef)
	f.refs[imageRef] = c
	f.files[c.Manifest.Digest] = map[string][]byte{
		"manifest.json": manifestJSON(layers, config),
	}

	for _, d := range layers {
		ref := "ociimage/" + d.Encoded()
		f.refs[ref] = f.commit(ref)
	}
	configRef := "ociimage/" + config.Encoded()
	f.refs[configRef] = f.commit(configRef)
}

func manifestJSON(layers []digest.Digest, config digest.Digest) []byte {
	var layerEntries []string
	for _, d := range layers {
		layerEntries = append(layerEntries, fmt.Sprintf(`{"mediaType":"application/vnd.oci.image.layer.v1.tar+gzip","digest":%q,"size":1}`, d.String()))
	}
	return []byte(fmt.Sprintf(`{"schemaVersion":2,"config":{"mediaType":"application/vnd.oci.image.config.v1+json","digest":%q,"size":1},"layers":[%s]}`,
		config.String(), strings.Join(layerEntries, ",")))
}

func (f *fakeStore) ListRefs(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for ref := range f.refs {
		if strings.HasPrefix(ref, prefix) {
			out = append(out, strings.TrimPrefix(ref, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) Resolve(ctx context.Context, ref string) (store.Commit, error) {
	c, ok := f.refs[ref]
	if !ok {
		return store.Commit{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ReadFile(ctx context.Context, c store.Commit, path string) ([]byte, error) {
	files, ok := f.files[c.Manifest.Digest]
	if !ok {
		return nil, store.ErrNotFound
	}
	data, ok := files[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) BeginTransaction(ctx context.Context) (refTransaction, error) {
	return &fakeTransaction{store: f, ctx: ctx}, nil
}

func (f *fakeStore) Prune(ctx context.Context) (store.PruneStats, error) {
	return store.PruneStats{}, nil
}

type fakeTransaction struct {
	store *fakeStore
	ctx   context.Context
	ops   map[string]*store.Commit
}

func (t *fakeTransaction) Context() context.Context { return t.ctx }

func (t *fakeTransaction) SetRef(ref string, c *store.Commit) {
	if t.ops == nil {
		t.ops = make(map[string]*store.Commit)
	}
	t.ops[ref] = c
}

func (t *fakeTransaction) Commit() error {
	for ref, c := range t.ops {
		if c == nil {
			delete(t.store.refs, ref)
			continue
		}
		t.store.refs[ref] = *c
	}
	return nil
}

func (t *fakeTransaction) Abort() error {
	t.ops = nil
	return nil
}

// Builds a fake repository holding two converted runtimes, "a" and "b",
// each with its own OCI image, layer, and config refs, and returns the
// store alongside an InstalledLister that reports only "a" as installed.
// Mirrors scenario S6: converting two images and then uninstalling one
// should leave only the uninstalled runtime's refs (and its now-unreferenced
// OCI dependents) as unused.
func twoRuntimeFixture() (*fakeStore, InstalledLister) {
	st := newFakeStore()

	st.addRuntime("runtime/com.docker.io.library.a/x86_64/master", "docker.io/library/a:latest")
	st.addOCIImage("docker.io/library/a:latest",
		[]digest.Digest{"sha256:layera"}, "sha256:configa")

	st.addRuntime("runtime/com.docker.io.library.b/x86_64/master", "docker.io/library/b:latest")
	st.addOCIImage("docker.io/library/b:latest",
		[]digest.Digest{"sha256:layerb"}, "sha256:configb")

	listInstalled := InstalledLister(func(ctx context.Context) ([]InstalledRuntime, error) {
		return []InstalledRuntime{{ID: "com.docker.io.library.a", Arch: "x86_64", Branch: "master"}}, nil
	})

	return st, listInstalled
}

func TestComputeUnusedKeepsInstalledRuntimeAndItsImage(t *testing.T) {
	st, listInstalled := twoRuntimeFixture()

	unused, err := computeUnused(context.Background(), st, listInstalled, true)
	if err != nil {
		t.Fatalf("computeUnused: %v", err)
	}

	mustBeUnused := []string{
		"runtime/com.docker.io.library.b/x86_64/master",
		"ociimage/" + image.Escape("docker.io/library/b:latest"),
		"ociimage/layerb",
		"ociimage/configb",
	}
	for _, ref := range mustBeUnused {
		if _, ok := unused[ref]; !ok {
			t.Errorf("expected %q to be unused, got set %v", ref, unused)
		}
	}

	mustSurvive := []string{
		"runtime/com.docker.io.library.a/x86_64/master",
		"ociimage/" + image.Escape("docker.io/library/a:latest"),
		"ociimage/layera",
		"ociimage/configa",
	}
	for _, ref := range mustSurvive {
		if _, ok := unused[ref]; ok {
			t.Errorf("expected %q to survive, but it was marked unused", ref)
		}
	}

	if len(unused) != len(mustBeUnused) {
		t.Errorf("unused = %v, want exactly %v", unused, mustBeUnused)
	}
}

func TestComputeUnusedRuntimeOnlyIgnoresOCIRefs(t *testing.T) {
	st, listInstalled := twoRuntimeFixture()

	unused, err := computeUnused(context.Background(), st, listInstalled, false)
	if err != nil {
		t.Fatalf("computeUnused: %v", err)
	}

	want := map[string]struct{}{"runtime/com.docker.io.library.b/x86_64/master": {}}
	if len(unused) != len(want) {
		t.Fatalf("unused = %v, want %v", unused, want)
	}
	for ref := range want {
		if _, ok := unused[ref]; !ok {
			t.Errorf("expected %q in unused set", ref)
		}
	}
}

func TestRemoveOCIDependentsMissingRuntimeIsNoOp(t *testing.T) {
	st := newFakeStore()
	candidates := map[string]struct{}{"ociimage/anything": {}}

	if err := removeOCIDependents(context.Background(), st, "runtime/does-not-exist", candidates); err != nil {
		t.Fatalf("removeOCIDependents: %v", err)
	}
	if _, ok := candidates["ociimage/anything"]; !ok {
		t.Error("candidates should be untouched when the runtime ref doesn't resolve")
	}
}

func TestDeleteUnusedRefsRemovesUnusedModeRefs(t *testing.T) {
	st, listInstalled := twoRuntimeFixture()

	if err := deleteUnusedRefs(context.Background(), st, ModeUnused, listInstalled); err != nil {
		t.Fatalf("deleteUnusedRefs: %v", err)
	}

	if _, err := st.Resolve(context.Background(), "runtime/com.docker.io.library.b/x86_64/master"); err != store.ErrNotFound {
		t.Errorf("expected b's runtime ref to be deleted, Resolve err = %v", err)
	}
	if _, err := st.Resolve(context.Background(), "runtime/com.docker.io.library.a/x86_64/master"); err != nil {
		t.Errorf("expected a's runtime ref to survive, Resolve err = %v", err)
	}
	// ModeUnused never touches ociimage/* directly.
	if _, err := st.Resolve(context.Background(), "ociimage/"+image.Escape("docker.io/library/b:latest")); err != nil {
		t.Errorf("expected b's image ref to survive ModeUnused, Resolve err = %v", err)
	}
}

// ModeAll sweeps unused runtimes as computeUnused finds them, but also
// unconditionally drops every remaining ociimage/* ref, live or not: once
// a runtime is committed, its OCI staging blobs are pure build cache and
// are re-pulled if ever needed again. Only runtime/* refs distinguish
// installed from uninstalled under this mode.
func TestDeleteUnusedRefsAllModeSweepsRuntimeBAndEveryOCIRef(t *testing.T) {
	st, listInstalled := twoRuntimeFixture()

	if err := deleteUnusedRefs(context.Background(), st, ModeAll, listInstalled); err != nil {
		t.Fatalf("deleteUnusedRefs: %v", err)
	}

	for _, ref := range []string{
		"runtime/com.docker.io.library.b/x86_64/master",
		"ociimage/" + image.Escape("docker.io/library/b:latest"),
		"ociimage/layerb",
		"ociimage/configb",
		"ociimage/" + image.Escape("docker.io/library/a:latest"),
		"ociimage/layera",
		"ociimage/configa",
	} {
		if _, err := st.Resolve(context.Background(), ref); err != store.ErrNotFound {
			t.Errorf("expected %q to be deleted, Resolve err = %v", ref, err)
		}
	}
	if _, err := st.Resolve(context.Background(), "runtime/com.docker.io.library.a/x86_64/master"); err != nil {
		t.Errorf("expected a's runtime ref to survive, Resolve err = %v", err)
	}
}

func TestRunAllModeReportsReclaimedSpaceAndDeletesOrphans(t *testing.T) {
	st, listInstalled := twoRuntimeFixture()

	mb, err := run(context.Background(), st, ModeAll, listInstalled)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if mb < 0 {
		t.Errorf("mb reclaimed = %v, want >= 0", mb)
	}

	if _, err := st.Resolve(context.Background(), "runtime/com.docker.io.library.b/x86_64/master"); err != store.ErrNotFound {
		t.Errorf("expected b's runtime ref deleted after run, err = %v", err)
	}
	if _, err := st.Resolve(context.Background(), "runtime/com.docker.io.library.a/x86_64/master"); err != nil {
		t.Errorf("expected a's runtime ref to survive run, err = %v", err)
	}
	if _, err := st.Resolve(context.Background(), "ociimage/"+image.Escape("docker.io/library/a:latest")); err != store.ErrNotFound {
		t.Errorf("expected a's ociimage ref swept by run's ModeAll, err = %v", err)
	}
}
