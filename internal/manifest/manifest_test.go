package manifest

import "testing"

func TestParseManifestJSON(t *testing.T) {
	data := []byte(`{
		"schemaVersion": 2,
		"config": {"mediaType": "application/vnd.oci.image.config.v1+json", "digest": "sha256:abc", "size": 10},
		"layers": [
			{"mediaType": "application/vnd.oci.image.layer.v1.tar+gzip", "digest": "sha256:layer1", "size": 100},
			{"mediaType": "application/vnd.oci.image.layer.v1.tar+gzip", "digest": "sha256:layer2", "size": 200}
		]
	}`)

	m, err := ParseManifestJSON(data)
	if err != nil {
		t.Fatalf("ParseManifestJSON: %v", err)
	}

	if m.ConfigDigest.String() != "sha256:abc" {
		t.Errorf("ConfigDigest = %q", m.ConfigDigest)
	}
	if len(m.LayerDigests) != 2 || m.LayerDigests[0].String() != "sha256:layer1" || m.LayerDigests[1].String() != "sha256:layer2" {
		t.Errorf("LayerDigests = %v", m.LayerDigests)
	}
}

func TestParseConfigJSON(t *testing.T) {
	data := []byte(`{
		"architecture": "amd64",
		"config": {
			"Env": ["PATH=/usr/bin", "MALFORMED", "FOO=bar=baz"],
			"Cmd": ["/bin/sh", "-c", "true"]
		}
	}`)

	cfg, err := ParseConfigJSON(data)
	if err != nil {
		t.Fatalf("ParseConfigJSON: %v", err)
	}

	if cfg.Architecture != "amd64" {
		t.Errorf("Architecture = %q", cfg.Architecture)
	}
	if cfg.Env["PATH"] != "/usr/bin" {
		t.Errorf("PATH = %q", cfg.Env["PATH"])
	}
	if cfg.Env["FOO"] != "bar=baz" {
		t.Errorf("FOO = %q", cfg.Env["FOO"])
	}
	if _, ok := cfg.Env["MALFORMED"]; ok {
		t.Errorf("malformed entry should be skipped")
	}
	if len(cfg.Cmd) != 3 {
		t.Errorf("Cmd = %v", cfg.Cmd)
	}
}

func TestToken(t *testing.T) {
	m, err := ParseManifestJSON([]byte(`{"config":{"digest":"sha256:deadbeef"},"layers":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := Token(m.ConfigDigest); got != "deadbeef" {
		t.Errorf("Token = %q, want %q", got, "deadbeef")
	}
}
