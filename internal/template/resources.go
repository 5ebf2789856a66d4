package template

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"

	"github.com/lex00/wetwire-site-go/internal/policy"
)

// CloudFormation resource types.
const (
	TypeCertificate        = "AWS::CertificateManager::Certificate"
	TypeBucket             = "AWS::S3::Bucket"
	TypeBucketPolicy       = "AWS::S3::BucketPolicy"
	TypeOriginAccess       = "AWS::CloudFront::CloudFrontOriginAccessIdentity"
	TypeDistribution       = "AWS::CloudFront::Distribution"
	TypeRecordSet          = "AWS::Route53::RecordSet"
	CloudFrontHostedZone   = "Z2FDTNDATAQYW2"
	CachingOptimizedPolicy = "658327ea-f89d-4fab-a63d-7e88639e58f6"
)

type certificateProps struct {
	DomainName              string                   `json:"DomainName"`
	ValidationMethod        string                   `json:"ValidationMethod"`
	DomainValidationOptions []domainValidationOption `json:"DomainValidationOptions"`
	Tags                    []intrinsics.Tag         `json:"Tags,omitempty"`
}

type domainValidationOption struct {
	DomainName   string `json:"DomainName"`
	HostedZoneId string `json:"HostedZoneId"`
}

type bucketProps struct {
	BucketName                     string            `json:"BucketName"`
	BucketEncryption               bucketEncryption  `json:"BucketEncryption"`
	PublicAccessBlockConfiguration publicAccessBlock `json:"PublicAccessBlockConfiguration"`
	OwnershipControls              ownershipControls `json:"OwnershipControls"`
	Tags                           []intrinsics.Tag  `json:"Tags,omitempty"`
}

type bucketEncryption struct {
	ServerSideEncryptionConfiguration []encryptionRule `json:"ServerSideEncryptionConfiguration"`
}

type encryptionRule struct {
	ServerSideEncryptionByDefault encryptionDefault `json:"ServerSideEncryptionByDefault"`
	BucketKeyEnabled              bool              `json:"BucketKeyEnabled"`
}

type encryptionDefault struct {
	SSEAlgorithm string `json:"SSEAlgorithm"`
}

type publicAccessBlock struct {
	BlockPublicAcls       bool `json:"BlockPublicAcls"`
	BlockPublicPolicy     bool `json:"BlockPublicPolicy"`
	IgnorePublicAcls      bool `json:"IgnorePublicAcls"`
	RestrictPublicBuckets bool `json:"RestrictPublicBuckets"`
}

type ownershipControls struct {
	Rules []ownershipRule `json:"Rules"`
}

type ownershipRule struct {
	ObjectOwnership string `json:"ObjectOwnership"`
}

type bucketPolicyProps struct {
	Bucket         any                   `json:"Bucket"`
	PolicyDocument policy.PolicyDocument `json:"PolicyDocument"`
}

type originAccessProps struct {
	CloudFrontOriginAccessIdentityConfig originAccessConfig `json:"CloudFrontOriginAccessIdentityConfig"`
}

type originAccessConfig struct {
	Comment string `json:"Comment"`
}

type distributionProps struct {
	DistributionConfig distributionConfig `json:"DistributionConfig"`
	Tags               []intrinsics.Tag   `json:"Tags,omitempty"`
}

type distributionConfig struct {
	Aliases              []string              `json:"Aliases"`
	Enabled              bool                  `json:"Enabled"`
	DefaultRootObject    string                `json:"DefaultRootObject"`
	HttpVersion          string                `json:"HttpVersion"`
	PriceClass           string                `json:"PriceClass"`
	ViewerCertificate    viewerCertificate     `json:"ViewerCertificate"`
	Origins              []origin              `json:"Origins"`
	DefaultCacheBehavior cacheBehavior         `json:"DefaultCacheBehavior"`
	CacheBehaviors       []cacheBehavior       `json:"CacheBehaviors,omitempty"`
	Logging              distributionLogging   `json:"Logging"`
	CustomErrorResponses []customErrorResponse `json:"CustomErrorResponses,omitempty"`
}

type viewerCertificate struct {
	AcmCertificateArn      any    `json:"AcmCertificateArn"`
	SslSupportMethod       string `json:"SslSupportMethod"`
	MinimumProtocolVersion string `json:"MinimumProtocolVersion"`
}

type origin struct {
	Id             string         `json:"Id"`
	DomainName     any            `json:"DomainName"`
	S3OriginConfig s3OriginConfig `json:"S3OriginConfig"`
}

type s3OriginConfig struct {
	OriginAccessIdentity any `json:"OriginAccessIdentity"`
}

type cacheBehavior struct {
	PathPattern          string   `json:"PathPattern,omitempty"`
	TargetOriginId       string   `json:"TargetOriginId"`
	Compress             bool     `json:"Compress"`
	ViewerProtocolPolicy string   `json:"ViewerProtocolPolicy"`
	AllowedMethods       []string `json:"AllowedMethods"`
	CachedMethods        []string `json:"CachedMethods"`
	CachePolicyId        string   `json:"CachePolicyId"`
}

type distributionLogging struct {
	Bucket         any    `json:"Bucket"`
	Prefix         string `json:"Prefix"`
	IncludeCookies bool   `json:"IncludeCookies"`
}

type customErrorResponse struct {
	ErrorCode          int `json:"ErrorCode"`
	ErrorCachingMinTTL int `json:"ErrorCachingMinTTL"`
}

type recordSetProps struct {
	HostedZoneId string      `json:"HostedZoneId"`
	Name         string      `json:"Name"`
	Type         string      `json:"Type"`
	AliasTarget  aliasTarget `json:"AliasTarget"`
}

type aliasTarget struct {
	DNSName      any    `json:"DNSName"`
	HostedZoneId string `json:"HostedZoneId"`
}
