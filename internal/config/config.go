// Package config resolves the website configuration.
//
// A RawConfig mirrors the keys an operator writes in site.yaml. Resolve
// validates it, applies defaults and canonicalizes every bucket name,
// producing a Resolved value that is read-only for the rest of the run.
package config

import (
	"fmt"
	"strings"
)

// Environment governs the lifecycle of storage resources.
type Environment string

const (
	// EnvDev marks buckets as disposable: deleted and emptied on teardown.
	EnvDev Environment = "dev"
	// EnvProd retains buckets on teardown.
	EnvProd Environment = "prod"
)

// ParseEnvironment maps user-facing aliases to an Environment.
// An empty string selects EnvProd.
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "prod", "production":
		return EnvProd, nil
	case "dev", "development":
		return EnvDev, nil
	default:
		return "", fmt.Errorf("unknown environment %q (use dev or prod)", value)
	}
}

// RawConfig is the unresolved configuration as supplied by the operator.
type RawConfig struct {
	AppName                     string `json:"appName,omitempty"`
	DomainName                  string `json:"domainName,omitempty"`
	Environment                 string `json:"environment,omitempty"`
	HasPrivateData              *bool  `json:"hasPrivateData,omitempty"`
	PublicBucketName            string `json:"publicBucketName,omitempty"`
	PrivateBucketName           string `json:"privateBucketName,omitempty"`
	LoggingBucketName           string `json:"loggingBucketName,omitempty"`
	PublicDataPath              string `json:"publicDataPath,omitempty"`
	PrivateDataPath             string `json:"privateDataPath,omitempty"`
	GenerateWildcardCertificate bool   `json:"generateWildcardCertificate,omitempty"`
	GithubOwner                 string `json:"githubOwner,omitempty"`
	GithubRepo                  string `json:"githubRepo,omitempty"`
	GithubBranch                string `json:"githubBranch,omitempty"`
	HostedZoneID                string `json:"hostedZoneId,omitempty"`
}

// RepoIdentity identifies the source repository that owns the resources.
type RepoIdentity struct {
	Owner  string
	Repo   string
	Branch string
}

// Resolved is a fully defaulted, validated configuration.
type Resolved struct {
	AppName                     string
	DomainName                  string
	Environment                 Environment
	HasPrivateData              bool
	PublicBucketName            string
	PrivateBucketName           string
	LoggingBucketName           string
	PublicDataPath              string
	PrivateDataPath             string
	GenerateWildcardCertificate bool
	Repo                        RepoIdentity
	HostedZoneID                string
}

// ProjectTag is the value of the "project" tag applied to every resource.
func (r *Resolved) ProjectTag() string {
	return r.Repo.Repo + ":" + r.Repo.Branch
}

// HasPrivateBucket reports whether the private storage branch exists.
func (r *Resolved) HasPrivateBucket() bool {
	return r.HasPrivateData && r.PrivateBucketName != ""
}

// IsProd reports whether resources are retained on teardown.
func (r *Resolved) IsProd() bool {
	return r.Environment == EnvProd
}
