// Package naming normalizes user-supplied identifiers into storage bucket names.
package naming

import (
	"regexp"
	"strings"
)

var invalidBucketChars = regexp.MustCompile(`[^a-z0-9.-]`)

// Canonicalize converts raw into a bucket name.
//
// The input is lower-cased, a single trailing "/" is dropped, every remaining
// "/" becomes "-" and anything outside [a-z0-9.-] is removed. An empty result
// means the input had no usable characters; callers treat that as a failure.
func Canonicalize(raw string) string {
	name := strings.ToLower(raw)
	name = strings.TrimSuffix(name, "/")
	name = strings.ReplaceAll(name, "/", "-")
	return invalidBucketChars.ReplaceAllString(name, "")
}

// LoggingBucketName returns the default logging bucket for a canonical
// public bucket name.
func LoggingBucketName(publicBucket string) string {
	return Canonicalize(publicBucket + "-logging")
}

// PrivateBucketName returns the default private bucket for an app name.
func PrivateBucketName(appName string) string {
	return appName + "-private"
}
