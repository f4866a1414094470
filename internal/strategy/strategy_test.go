package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pirikara/liccheck/internal/policy"
)

const validStrategy = `{
    "Licenses": {
        "authorized_licenses": ["BSD-3-Clause", "MIT"],
        "unauthorized_licenses": ["propietary"]
    },
    "Authorized Packages": ["ticdenis/liccheck"]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "license_strategy.json", validStrategy)

	s, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"BSD-3-Clause", "MIT"}, s.AuthorizedLicenses())
	assert.Equal(t, []string{"propietary"}, s.UnauthorizedLicenses())
	assert.Equal(t, []string{"ticdenis/liccheck"}, s.AuthorizedPackages())
}

func TestFromFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "strategy.yaml", `
Licenses:
  authorized_licenses:
    - MIT
    - Apache-2.0
  unauthorized_licenses:
    - proprietary
Authorized Packages: []
`)

	s, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"MIT", "Apache-2.0"}, s.AuthorizedLicenses())
	assert.Equal(t, []string{"proprietary"}, s.UnauthorizedLicenses())
	assert.Empty(t, s.AuthorizedPackages())
}

func TestFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "not json",
			content: "not json",
			want:    "not a valid document",
		},
		{
			name:    "not an object",
			content: `["MIT"]`,
			want:    "document must be an object",
		},
		{
			name:    "missing Licenses",
			content: `{"Authorized Packages": []}`,
			want:    `missing "Licenses" key`,
		},
		{
			name:    "Licenses not an object",
			content: `{"Licenses": [], "Authorized Packages": []}`,
			want:    `"Licenses" must be an object`,
		},
		{
			name:    "missing authorized_licenses",
			content: `{"Licenses": {"unauthorized_licenses": []}, "Authorized Packages": []}`,
			want:    `missing "authorized_licenses" key`,
		},
		{
			name:    "missing unauthorized_licenses",
			content: `{"Licenses": {"authorized_licenses": []}, "Authorized Packages": []}`,
			want:    `missing "unauthorized_licenses" key`,
		},
		{
			name:    "missing Authorized Packages",
			content: `{"Licenses": {"authorized_licenses": [], "unauthorized_licenses": []}}`,
			want:    `missing "Authorized Packages" key`,
		},
		{
			name:    "missing key reported before bad type",
			content: `{"Licenses": {"authorized_licenses": "MIT", "unauthorized_licenses": []}}`,
			want:    `missing "Authorized Packages" key`,
		},
		{
			name:    "authorized_licenses not a list",
			content: `{"Licenses": {"authorized_licenses": "MIT", "unauthorized_licenses": []}, "Authorized Packages": []}`,
			want:    `"authorized_licenses" must be an array`,
		},
		{
			name:    "unauthorized_licenses not a list",
			content: `{"Licenses": {"authorized_licenses": [], "unauthorized_licenses": {}}, "Authorized Packages": []}`,
			want:    `"unauthorized_licenses" must be an array`,
		},
		{
			name:    "Authorized Packages not a list",
			content: `{"Licenses": {"authorized_licenses": [], "unauthorized_licenses": []}, "Authorized Packages": null}`,
			want:    `"Authorized Packages" must be an array`,
		},
		{
			name:    "non-string entry",
			content: `{"Licenses": {"authorized_licenses": ["MIT", 3], "unauthorized_licenses": []}, "Authorized Packages": []}`,
			want:    `"authorized_licenses" entry 1 must be a string`,
		},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, fmt.Sprintf("case%d.json", i), tt.content)

			_, err := FromFile(path)
			require.ErrorIs(t, err, ErrInvalidStrategyConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromFile_Overlap(t *testing.T) {
	path := writeFile(t, t.TempDir(), "overlap.json", `{
		"Licenses": {"authorized_licenses": ["MIT"], "unauthorized_licenses": ["MIT"]},
		"Authorized Packages": []
	}`)

	_, err := FromFile(path)
	assert.ErrorIs(t, err, ErrInvalidStrategyConfig)
	assert.ErrorIs(t, err, policy.ErrLicenseOverlap)
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrInvalidStrategyConfig)
}

func TestFromManifest(t *testing.T) {
	path := writeFile(t, t.TempDir(), "composer.json", `{
		"name": "acme/app",
		"extra": {"liccheck": `+validStrategy+`}
	}`)

	s, err := FromManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BSD-3-Clause", "MIT"}, s.AuthorizedLicenses())
}

func TestFromManifest_NoEmbeddedConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{"},
		{name: "no extra", content: `{"name": "acme/app"}`},
		{name: "extra not an object", content: `{"extra": []}`},
		{name: "no liccheck", content: `{"extra": {"branch-alias": {}}}`},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, fmt.Sprintf("composer%d.json", i), tt.content)

			_, err := FromManifest(path)
			assert.ErrorIs(t, err, ErrNoEmbeddedConfig)
			assert.NotErrorIs(t, err, ErrInvalidStrategyConfig)
		})
	}

	_, err := FromManifest(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNoEmbeddedConfig)
}

func TestFromManifest_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "incomplete section",
			content: `{"extra": {"liccheck": {"Licenses": {}}}}`,
			want:    `missing "authorized_licenses" key`,
		},
		{
			name:    "liccheck is a string",
			content: `{"extra": {"liccheck": "license_strategy.json"}}`,
			want:    `"liccheck" must be an object`,
		},
		{
			name:    "liccheck is a list",
			content: `{"extra": {"liccheck": ["MIT"]}}`,
			want:    `"liccheck" must be an object`,
		},
		{
			name:    "liccheck is null",
			content: `{"extra": {"liccheck": null}}`,
			want:    `"liccheck" must be an object`,
		},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, fmt.Sprintf("composer%d.json", i), tt.content)

			_, err := FromManifest(path)
			require.ErrorIs(t, err, ErrInvalidStrategyConfig)
			assert.NotErrorIs(t, err, ErrNoEmbeddedConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	original, err := Parse([]byte(validStrategy))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.yml"} {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(name, original)
			require.NoError(t, err)
			path := writeFile(t, dir, name, string(data))

			loaded, err := FromFile(path)
			require.NoError(t, err)
			assert.Equal(t, original.AuthorizedLicenses(), loaded.AuthorizedLicenses())
			assert.Equal(t, original.UnauthorizedLicenses(), loaded.UnauthorizedLicenses())
			assert.Equal(t, original.AuthorizedPackages(), loaded.AuthorizedPackages())
		})
	}
}
