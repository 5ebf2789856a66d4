package config

import (
	"os"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/lex00/wetwire-site-go/internal/naming"
)

// DirChecker reports whether a path is an existing directory.
type DirChecker interface {
	IsDir(path string) (bool, error)
}

// DirCheckerFunc adapts a function to DirChecker.
type DirCheckerFunc func(path string) (bool, error)

// IsDir calls f(path).
func (f DirCheckerFunc) IsDir(path string) (bool, error) { return f(path) }

type osDirChecker struct{}

func (osDirChecker) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// Option configures Resolve.
type Option func(*resolver)

// WithDirChecker replaces the filesystem check for data paths.
func WithDirChecker(dc DirChecker) Option {
	return func(r *resolver) {
		r.dirs = dc
	}
}

type resolver struct {
	dirs DirChecker
}

// Resolve validates raw and returns the resolved configuration.
//
// Defaults, first match wins:
//   - appName is domainName
//   - publicBucketName is appName
//   - privateBucketName is appName-private
//   - hasPrivateData is true when unset and a private data path is given
//   - loggingBucketName is the canonical public bucket name plus "-logging"
//   - environment is prod
//
// Every bucket name is canonicalized once after defaulting.
func Resolve(raw RawConfig, opts ...Option) (*Resolved, error) {
	r := &resolver{dirs: osDirChecker{}}
	for _, opt := range opts {
		opt(r)
	}

	domain, err := resolveDomain(raw.DomainName)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw.GithubRepo) == "" {
		return nil, fieldError("githubRepo", "must be defined")
	}
	if strings.TrimSpace(raw.GithubBranch) == "" {
		return nil, fieldError("githubBranch", "must be defined")
	}

	if raw.PublicDataPath == "" {
		return nil, fieldError("publicDataPath", "must be defined")
	}
	if err := r.checkDir("publicDataPath", raw.PublicDataPath); err != nil {
		return nil, err
	}
	if raw.PrivateDataPath != "" {
		if err := r.checkDir("privateDataPath", raw.PrivateDataPath); err != nil {
			return nil, err
		}
	}

	env, err := ParseEnvironment(raw.Environment)
	if err != nil {
		return nil, fieldError("environment", "%v", err)
	}

	hasPrivate := raw.PrivateDataPath != ""
	if raw.HasPrivateData != nil {
		hasPrivate = *raw.HasPrivateData
	}
	if hasPrivate && raw.PrivateDataPath == "" {
		return nil, fieldError("privateDataPath", "must be defined when hasPrivateData is true")
	}

	appName := raw.AppName
	if appName == "" {
		appName = domain
	}

	publicRaw := raw.PublicBucketName
	if publicRaw == "" {
		publicRaw = appName
	}
	public := naming.Canonicalize(publicRaw)
	if public == "" {
		return nil, fieldError("publicBucketName", "%q has no valid bucket name characters", publicRaw)
	}

	logging := naming.LoggingBucketName(public)
	if raw.LoggingBucketName != "" {
		logging = naming.Canonicalize(raw.LoggingBucketName)
		if logging == "" {
			return nil, fieldError("loggingBucketName", "%q has no valid bucket name characters", raw.LoggingBucketName)
		}
	}

	var private string
	if hasPrivate {
		privateRaw := raw.PrivateBucketName
		if privateRaw == "" {
			privateRaw = naming.PrivateBucketName(appName)
		}
		private = naming.Canonicalize(privateRaw)
		if private == "" {
			return nil, fieldError("privateBucketName", "%q has no valid bucket name characters", privateRaw)
		}
	}

	if logging == public {
		return nil, fieldError("loggingBucketName", "%q collides with publicBucketName", logging)
	}
	if hasPrivate {
		switch private {
		case public:
			return nil, fieldError("privateBucketName", "%q collides with publicBucketName", private)
		case logging:
			return nil, fieldError("privateBucketName", "%q collides with loggingBucketName", private)
		}
	}

	resolved := &Resolved{
		AppName:                     appName,
		DomainName:                  domain,
		Environment:                 env,
		HasPrivateData:              hasPrivate,
		PublicBucketName:            public,
		PrivateBucketName:           private,
		LoggingBucketName:           logging,
		PublicDataPath:              raw.PublicDataPath,
		GenerateWildcardCertificate: raw.GenerateWildcardCertificate,
		Repo: RepoIdentity{
			Owner:  raw.GithubOwner,
			Repo:   raw.GithubRepo,
			Branch: raw.GithubBranch,
		},
		HostedZoneID: raw.HostedZoneID,
	}
	if hasPrivate {
		resolved.PrivateDataPath = raw.PrivateDataPath
	}
	return resolved, nil
}

func resolveDomain(value string) (string, error) {
	domain := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), ".")
	if domain == "" {
		return "", fieldError("domainName", "must be defined")
	}
	if msgs := validation.IsDNS1123Subdomain(domain); len(msgs) > 0 {
		return "", fieldError("domainName", "%q is not a valid DNS name: %s", value, strings.Join(msgs, "; "))
	}
	if !strings.Contains(domain, ".") {
		return "", fieldError("domainName", "%q is not a fully qualified domain", value)
	}
	return domain, nil
}

func (r *resolver) checkDir(field, path string) error {
	ok, err := r.dirs.IsDir(path)
	if err != nil {
		return fieldError(field, "%q could not be checked: %v", path, err)
	}
	if !ok {
		return fieldError(field, "%q is not a directory that exists", path)
	}
	return nil
}
