package wetwire_site

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTemplate_OmitsEmptySections(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"PublicWebsiteData": {Type: "AWS::S3::Bucket"},
		},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"AWSTemplateFormatVersion": "2010-09-09",
		"Resources": {"PublicWebsiteData": {"Type": "AWS::S3::Bucket"}}
	}`, string(data))
}

func TestResourceDef_YAMLKeys(t *testing.T) {
	def := ResourceDef{
		Type:                "AWS::S3::Bucket",
		DependsOn:           []string{"WebsiteCertificate"},
		DeletionPolicy:      "Retain",
		UpdateReplacePolicy: "Retain",
	}

	data, err := yaml.Marshal(def)
	require.NoError(t, err)
	assert.Equal(t, `Type: AWS::S3::Bucket
DependsOn:
    - WebsiteCertificate
DeletionPolicy: Retain
UpdateReplacePolicy: Retain
`, string(data))
}

func TestOutput_Export(t *testing.T) {
	out := Output{
		Description: "URL of the site",
		Value:       map[string]any{"Fn::Sub": "https://${WebsiteCDN.DomainName}"},
		Export:      &Export{Name: "example-com-CloudFrontURL"},
	}

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Description": "URL of the site",
		"Value": {"Fn::Sub": "https://${WebsiteCDN.DomainName}"},
		"Export": {"Name": "example-com-CloudFrontURL"}
	}`, string(data))
}

func TestPlanResult_JSON(t *testing.T) {
	result := PlanResult{
		Success: true,
		Nodes: []PlanNode{
			{ID: "Zone", Kind: "Zone", State: "existing"},
			{ID: "WebsiteCertificate", Kind: "Certificate", State: "created", DependsOn: []string{"Zone"}},
		},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"nodes": [
			{"id": "Zone", "kind": "Zone", "state": "existing"},
			{"id": "WebsiteCertificate", "kind": "Certificate", "state": "created", "dependsOn": ["Zone"]}
		]
	}`, string(data))
}

func TestValidateResult_JSON(t *testing.T) {
	data, err := json.Marshal(ValidateResult{Errors: []string{`config: "githubRepo" must be defined`}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "nodes": 0, "errors": ["config: \"githubRepo\" must be defined"]}`, string(data))
}
