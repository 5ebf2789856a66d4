package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allDirs() Option {
	return WithDirChecker(DirCheckerFunc(func(string) (bool, error) { return true, nil }))
}

func boolPtr(b bool) *bool { return &b }

func baseRaw() RawConfig {
	return RawConfig{
		DomainName:     "example.com",
		PublicDataPath: "./site",
		GithubRepo:     "website",
		GithubBranch:   "main",
	}
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(baseRaw(), allDirs())
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.AppName)
	assert.Equal(t, "example.com", cfg.PublicBucketName)
	assert.Equal(t, "example.com-logging", cfg.LoggingBucketName)
	assert.Equal(t, "", cfg.PrivateBucketName)
	assert.False(t, cfg.HasPrivateData)
	assert.False(t, cfg.HasPrivateBucket())
	assert.Equal(t, EnvProd, cfg.Environment)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "website:main", cfg.ProjectTag())
}

func TestResolve_CanonicalizesBucketNames(t *testing.T) {
	raw := baseRaw()
	raw.PublicBucketName = "Example.com/Site"
	raw.HasPrivateData = boolPtr(false)

	cfg, err := Resolve(raw, allDirs())
	require.NoError(t, err)

	assert.Equal(t, "example.com-site", cfg.PublicBucketName)
	assert.Equal(t, "example.com-site-logging", cfg.LoggingBucketName)
	assert.False(t, cfg.HasPrivateBucket())
}

func TestResolve_LoggingDefaultUsesCanonicalPublicName(t *testing.T) {
	raw := baseRaw()
	raw.PublicBucketName = "My/Site/"

	cfg, err := Resolve(raw, allDirs())
	require.NoError(t, err)

	assert.Equal(t, "my-site", cfg.PublicBucketName)
	assert.Equal(t, "my-site-logging", cfg.LoggingBucketName)
}

func TestResolve_ExplicitNamesCanonicalized(t *testing.T) {
	raw := baseRaw()
	raw.AppName = "Blog"
	raw.LoggingBucketName = "Logs/Blog"
	raw.PrivateBucketName = "Blog_Private"
	raw.PrivateDataPath = "./private"

	cfg, err := Resolve(raw, allDirs())
	require.NoError(t, err)

	assert.Equal(t, "Blog", cfg.AppName)
	assert.Equal(t, "blog", cfg.PublicBucketName)
	assert.Equal(t, "logs-blog", cfg.LoggingBucketName)
	assert.Equal(t, "blogprivate", cfg.PrivateBucketName)
}

func TestResolve_PrivateDataDerivedFromPath(t *testing.T) {
	raw := baseRaw()
	raw.PrivateDataPath = "./private"

	cfg, err := Resolve(raw, allDirs())
	require.NoError(t, err)

	assert.True(t, cfg.HasPrivateData)
	assert.True(t, cfg.HasPrivateBucket())
	assert.Equal(t, "example.com-private", cfg.PrivateBucketName)
	assert.Equal(t, "./private", cfg.PrivateDataPath)
}

func TestResolve_ExplicitFalseWinsOverPath(t *testing.T) {
	raw := baseRaw()
	raw.PrivateDataPath = "./private"
	raw.HasPrivateData = boolPtr(false)

	cfg, err := Resolve(raw, allDirs())
	require.NoError(t, err)

	assert.False(t, cfg.HasPrivateBucket())
	assert.Empty(t, cfg.PrivateDataPath)
}

func TestResolve_Environment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"", EnvProd},
		{"prod", EnvProd},
		{"PROD", EnvProd},
		{"production", EnvProd},
		{"dev", EnvDev},
		{"DEV", EnvDev},
		{"development", EnvDev},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			raw := baseRaw()
			raw.Environment = tt.in
			cfg, err := Resolve(raw, allDirs())
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Environment)
		})
	}
}

func TestResolve_DomainNormalized(t *testing.T) {
	raw := baseRaw()
	raw.DomainName = "WWW.Example.com."

	cfg, err := Resolve(raw, allDirs())
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", cfg.DomainName)
	assert.Equal(t, "www.example.com", cfg.PublicBucketName)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawConfig)
		field  string
	}{
		{"missing domain", func(r *RawConfig) { r.DomainName = "" }, "domainName"},
		{"invalid domain", func(r *RawConfig) { r.DomainName = "exa mple.com" }, "domainName"},
		{"single label domain", func(r *RawConfig) { r.DomainName = "localhost" }, "domainName"},
		{"missing repo", func(r *RawConfig) { r.GithubRepo = "" }, "githubRepo"},
		{"missing branch", func(r *RawConfig) { r.GithubBranch = " " }, "githubBranch"},
		{"missing public path", func(r *RawConfig) { r.PublicDataPath = "" }, "publicDataPath"},
		{"private flag without path", func(r *RawConfig) { r.HasPrivateData = boolPtr(true) }, "privateDataPath"},
		{"unknown environment", func(r *RawConfig) { r.Environment = "staging" }, "environment"},
		{"unusable public bucket", func(r *RawConfig) { r.PublicBucketName = "___" }, "publicBucketName"},
		{"unusable logging bucket", func(r *RawConfig) { r.LoggingBucketName = "!!" }, "loggingBucketName"},
		{"unusable private bucket", func(r *RawConfig) {
			r.PrivateDataPath = "./private"
			r.PrivateBucketName = "***"
		}, "privateBucketName"},
		{"logging bucket is the public bucket", func(r *RawConfig) { r.LoggingBucketName = "Example.com" }, "loggingBucketName"},
		{"private bucket is the public bucket", func(r *RawConfig) {
			r.PrivateDataPath = "./private"
			r.PrivateBucketName = "example.com/"
		}, "privateBucketName"},
		{"private bucket is the logging bucket", func(r *RawConfig) {
			r.PrivateDataPath = "./private"
			r.PrivateBucketName = "example.com-logging"
		}, "privateBucketName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := baseRaw()
			tt.mutate(&raw)

			cfg, err := Resolve(raw, allDirs())
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %T", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestResolve_ChecksDirectories(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte("<html></html>"), 0o644))

	raw := baseRaw()
	raw.PublicDataPath = dir
	_, err := Resolve(raw)
	require.NoError(t, err)

	raw.PublicDataPath = file
	_, err = Resolve(raw)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "publicDataPath", cfgErr.Field)

	raw.PublicDataPath = dir
	raw.PrivateDataPath = filepath.Join(dir, "missing")
	_, err = Resolve(raw)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "privateDataPath", cfgErr.Field)
}

func TestResolve_DirCheckerFailure(t *testing.T) {
	boom := WithDirChecker(DirCheckerFunc(func(string) (bool, error) {
		return false, errors.New("permission denied")
	}))

	_, err := Resolve(baseRaw(), boom)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
