package strategy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otherStrategy = `{
    "Licenses": {"authorized_licenses": ["Apache-2.0"], "unauthorized_licenses": []},
    "Authorized Packages": []
}`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	explicit := writeFile(t, dir, "explicit.json", otherStrategy)
	defaultFile := writeFile(t, dir, DefaultFile, validStrategy)
	manifest := writeFile(t, dir, "composer.json", `{"extra": {"liccheck": `+otherStrategy+`}}`)
	bareManifest := writeFile(t, dir, "bare.json", `{"name": "acme/app"}`)
	brokenManifest := writeFile(t, dir, "broken.json", `{"extra": {"liccheck": {}}}`)
	pointerManifest := writeFile(t, dir, "pointer.json", `{"extra": {"liccheck": "license_strategy.json"}}`)
	missing := filepath.Join(dir, "missing.json")

	tests := []struct {
		name     string
		opts     Options
		wantKind SourceKind
		wantPath string
		wantErr  error
	}{
		{
			name:     "explicit file wins",
			opts:     Options{File: explicit, Manifest: manifest, DefaultFile: defaultFile},
			wantKind: SourceFile,
			wantPath: explicit,
		},
		{
			name:     "embedded manifest section",
			opts:     Options{Manifest: manifest, DefaultFile: defaultFile},
			wantKind: SourceManifest,
			wantPath: manifest,
		},
		{
			name:     "manifest without section falls back to default file",
			opts:     Options{Manifest: bareManifest, DefaultFile: defaultFile},
			wantKind: SourceDefault,
			wantPath: defaultFile,
		},
		{
			name:     "missing manifest falls back to default file",
			opts:     Options{Manifest: missing, DefaultFile: defaultFile},
			wantKind: SourceDefault,
			wantPath: defaultFile,
		},
		{
			name:    "malformed manifest section is fatal",
			opts:    Options{Manifest: brokenManifest, DefaultFile: defaultFile},
			wantErr: ErrInvalidStrategyConfig,
		},
		{
			name:    "non-object manifest section does not fall back",
			opts:    Options{Manifest: pointerManifest, DefaultFile: defaultFile},
			wantErr: ErrInvalidStrategyConfig,
		},
		{
			name:    "missing explicit file is fatal",
			opts:    Options{File: missing, DefaultFile: defaultFile},
			wantErr: ErrInvalidStrategyConfig,
		},
		{
			name:    "nothing available",
			opts:    Options{Manifest: bareManifest, DefaultFile: missing},
			wantErr: ErrNoStrategy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, src, err := Load(tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, s)
			assert.Equal(t, tt.wantKind, src.Kind)
			assert.Equal(t, tt.wantPath, src.Path)
		})
	}
}
