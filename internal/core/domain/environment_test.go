package domain_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/venvup/internal/core/domain"
)

func TestContents_Fingerprint(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		a := domain.Contents{{Name: "pkg", Version: "1.0"}, {Name: "dep", Version: "2.0"}}
		b := domain.Contents{{Name: "Dep", Version: "2.0"}, {Name: "pkg", Version: "1.0"}}

		assert.NotEmpty(t, a.Fingerprint())
		assert.Len(t, a.Fingerprint(), 16)
		assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "order and name spelling must not matter")
	})

	t.Run("Changes on content", func(t *testing.T) {
		a := domain.Contents{{Name: "pkg", Version: "1.0"}}
		b := domain.Contents{{Name: "pkg", Version: "1.1"}}

		assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	})
}

func TestEnvironment_InstalledVersion(t *testing.T) {
	env := domain.NewEnvironment("/envs/pkg")
	env.Contents = domain.Contents{{Name: "Oll_Test", Version: "2.0.1"}, {Name: "broken", Version: "not-a-version"}}

	v, err := env.InstalledVersion("oll-test")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "2.0.1", v.String())

	v, err = env.InstalledVersion("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = env.InstalledVersion("broken")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidVersion.Error())
}

func TestInstallResponse_Decode(t *testing.T) {
	resp := domain.NewInstallResponse()
	resp.Success = true
	resp.Installed = append(resp.Installed, domain.Package{Name: "pkg", Version: "2.0.1"})

	var buf bytes.Buffer
	require.NoError(t, resp.Encode(&buf))
	assert.Contains(t, buf.String(), `"schema_version": 1`)

	decoded, err := domain.DecodeInstallResponse(&buf)
	require.NoError(t, err)
	assert.Equal(t, resp, decoded)
}

func TestInstallResponse_DecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown schema", input: `{"schema_version": 2, "success": true}`},
		{name: "missing schema", input: `{"success": true}`},
		{name: "not json", input: `Successfully installed pkg-2.0.1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.DecodeInstallResponse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorContains(t, err, domain.ErrMalformedInstallResponse.Error())
		})
	}
}

func TestInconsistency_String(t *testing.T) {
	missing := domain.Inconsistency{
		Package: "oll-test-top-level", Version: "2.0.1", Requirement: "oll-dep>=1.0", Kind: domain.InconsistencyMissing,
	}
	assert.Equal(t, "oll-test-top-level 2.0.1 requires oll-dep>=1.0, which is not installed.", missing.String())

	conflict := domain.Inconsistency{
		Package: "a", Version: "1.0", Requirement: "b==2.0", Kind: domain.InconsistencyConflict, Installed: "b 1.0",
	}
	assert.Equal(t, "a 1.0 has requirement b==2.0, but you have b 1.0.", conflict.String())
}

func TestConstraintsCache(t *testing.T) {
	cache := domain.NewConstraintsCache()
	_, ok := cache.Lookup("pkg")
	assert.False(t, ok)

	cache.Store("Oll_Test", "/site/oll_test/constraints.txt")
	path, ok := cache.Lookup("oll-test")
	require.True(t, ok)
	assert.Equal(t, "/site/oll_test/constraints.txt", path)

	var nilCache *domain.ConstraintsCache
	nilCache.Store("pkg", "x")
	_, ok = nilCache.Lookup("pkg")
	assert.False(t, ok)
}

func TestInstallRequest_Spec(t *testing.T) {
	req := domain.InstallRequest{Requirement: domain.MustParseRequirement("pkg~=2.0")}
	assert.Equal(t, "pkg~=2.0", req.Spec())

	target := domain.MustParseVersion("2.0.1")
	req.Target = &target
	assert.Equal(t, "pkg==2.0.1", req.Spec())
}
