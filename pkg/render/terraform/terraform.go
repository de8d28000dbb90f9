// Package terraform turns an architecture into an AWS Organizations
// Terraform configuration.
//
// The output mirrors the diagram: one organization, one organizational unit
// per category under the organization root, and one member account per
// architecture account, parented to its OU. Files are written with
// hclwrite so formatting matches `terraform fmt`.
//
//	files, err := terraform.Generate(architecture)
//	// files["main.tf"], files["variables.tf"], ...
//	bundle := terraform.Bundle(files)
package terraform

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/lzdw/lzdraw/pkg/arch"
)

// File names produced by Generate.
const (
	VersionsFile  = "versions.tf"
	VariablesFile = "variables.tf"
	MainFile      = "main.tf"
	OutputsFile   = "outputs.tf"

	// BundleFilename names the single-file artifact produced by Bundle.
	BundleFilename = "landing-zone.tf"
)

const (
	organizationType = "aws_organizations_organization"
	ouType           = "aws_organizations_organizational_unit"
	accountType      = "aws_organizations_account"
	organizationName = "this"
	defaultRegion    = "us-east-1"
)

// servicePrincipals maps normalized security service names to the service
// principals the organization must trust.
var servicePrincipals = map[string]string{
	"cloudtrail":        "cloudtrail.amazonaws.com",
	"config":            "config.amazonaws.com",
	"awsconfig":         "config.amazonaws.com",
	"guardduty":         "guardduty.amazonaws.com",
	"securityhub":       "securityhub.amazonaws.com",
	"macie":             "macie.amazonaws.com",
	"inspector":         "inspector2.amazonaws.com",
	"accessanalyzer":    "access-analyzer.amazonaws.com",
	"iamaccessanalyzer": "access-analyzer.amazonaws.com",
	"firewallmanager":   "fms.amazonaws.com",
	"backup":            "backup.amazonaws.com",
}

type account struct {
	resource string
	category arch.Category
	acc      arch.Account
	name     string
}

// Generate returns the Terraform files for a.
func Generate(a *arch.Architecture) (map[string][]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	accounts := collectAccounts(a)
	return map[string][]byte{
		VersionsFile:  versionsTF(),
		VariablesFile: variablesTF(a, accounts),
		MainFile:      mainTF(a, accounts),
		OutputsFile:   outputsTF(accounts),
	}, nil
}

// Bundle concatenates files into one artifact, in file-name order, each
// preceded by a comment naming the file.
func Bundle(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	slices.Sort(names)

	var buf bytes.Buffer
	for i, n := range names {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "# ---- %s ----\n", n)
		buf.Write(files[n])
	}
	return buf.Bytes()
}

var nonIdent = regexp.MustCompile(`[^a-z0-9]+`)

// resourceName converts a display name into a Terraform identifier.
func resourceName(prefix, name string) string {
	s := strings.Trim(nonIdent.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if s == "" {
		return prefix
	}
	return prefix + "_" + s
}

func collectAccounts(a *arch.Architecture) []account {
	used := make(map[string]int)
	var out []account
	for _, c := range arch.Categories() {
		for i, acc := range a.AccountStructure.OU(c) {
			name := arch.AccountName(c, i, acc)
			res := resourceName(c.Slug(), name)
			used[res]++
			if n := used[res]; n > 1 {
				res = fmt.Sprintf("%s_%d", res, n)
			}
			out = append(out, account{resource: res, category: c, acc: acc, name: name})
		}
	}
	return out
}

func traversal(parts ...string) hcl.Traversal {
	t := hcl.Traversal{hcl.TraverseRoot{Name: parts[0]}}
	for _, p := range parts[1:] {
		t = append(t, hcl.TraverseAttr{Name: p})
	}
	return t
}

func comment(body *hclwrite.Body, text string) {
	text = strings.Join(strings.Fields(text), " ")
	body.AppendUnstructuredTokens(hclwrite.Tokens{
		{Type: hclsyntax.TokenComment, Bytes: []byte("# " + text + "\n")},
	})
}

func versionsTF() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	tfBody := body.AppendNewBlock("terraform", nil).Body()
	tfBody.SetAttributeValue("required_version", cty.StringVal(">= 1.0"))
	tfBody.AppendNewBlock("required_providers", nil).Body().SetAttributeValue("aws", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("hashicorp/aws"),
		"version": cty.StringVal("~> 5.0"),
	}))

	body.AppendNewline()
	body.AppendNewBlock("provider", []string{"aws"}).Body().SetAttributeTraversal("region", traversal("var", "aws_region"))
	return f.Bytes()
}

func emailVariable(acc account) string {
	return acc.resource + "_email"
}

func variablesTF(a *arch.Architecture, accounts []account) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	region := defaultRegion
	if n := a.NetworkArchitecture; n != nil && strings.TrimSpace(n.PrimaryRegion) != "" {
		region = strings.TrimSpace(n.PrimaryRegion)
	}
	rb := body.AppendNewBlock("variable", []string{"aws_region"}).Body()
	rb.SetAttributeValue("description", cty.StringVal("AWS region for the organization provider"))
	rb.SetAttributeTraversal("type", traversal("string"))
	rb.SetAttributeValue("default", cty.StringVal(region))

	for _, acc := range accounts {
		if strings.TrimSpace(acc.acc.Email) != "" {
			continue
		}
		body.AppendNewline()
		vb := body.AppendNewBlock("variable", []string{emailVariable(acc)}).Body()
		vb.SetAttributeValue("description", cty.StringVal(fmt.Sprintf("Root email for the %s account", acc.name)))
		vb.SetAttributeTraversal("type", traversal("string"))
	}
	return f.Bytes()
}

func principals(a *arch.Architecture) []cty.Value {
	set := map[string]bool{"controltower.amazonaws.com": true}
	if sb := a.SecurityBaseline; sb != nil {
		if sb.IdentityCenter {
			set["sso.amazonaws.com"] = true
		}
		for _, svc := range sb.Services {
			key := nonIdent.ReplaceAllString(strings.ToLower(svc), "")
			if p, ok := servicePrincipals[key]; ok {
				set[p] = true
			}
		}
	}
	names := make([]string, 0, len(set))
	for p := range set {
		names = append(names, p)
	}
	slices.Sort(names)

	vals := make([]cty.Value, len(names))
	for i, n := range names {
		vals[i] = cty.StringVal(n)
	}
	return vals
}

func mainTF(a *arch.Architecture, accounts []account) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	m := a.Management()
	comment(body, fmt.Sprintf("Landing zone for %s. Apply from the management account %q (%s).", a.Client(), m.Name, m.Email))
	if p := strings.TrimSpace(a.AccountStructure.Pattern); p != "" {
		comment(body, "Account pattern: "+p)
	}

	org := body.AppendNewBlock("resource", []string{organizationType, organizationName}).Body()
	org.SetAttributeValue("feature_set", cty.StringVal("ALL"))
	org.SetAttributeValue("aws_service_access_principals", cty.ListVal(principals(a)))
	org.SetAttributeValue("enabled_policy_types", cty.ListVal([]cty.Value{cty.StringVal("SERVICE_CONTROL_POLICY")}))

	rootID := hcl.Traversal{
		hcl.TraverseRoot{Name: organizationType},
		hcl.TraverseAttr{Name: organizationName},
		hcl.TraverseAttr{Name: "roots"},
		hcl.TraverseIndex{Key: cty.NumberIntVal(0)},
		hcl.TraverseAttr{Name: "id"},
	}
	for _, c := range arch.Categories() {
		body.AppendNewline()
		ou := body.AppendNewBlock("resource", []string{ouType, c.Slug()}).Body()
		ou.SetAttributeValue("name", cty.StringVal(c.Name()))
		ou.SetAttributeTraversal("parent_id", rootID)
	}

	for _, acc := range accounts {
		body.AppendNewline()
		ab := body.AppendNewBlock("resource", []string{accountType, acc.resource}).Body()
		ab.SetAttributeValue("name", cty.StringVal(acc.name))
		if email := strings.TrimSpace(acc.acc.Email); email != "" {
			ab.SetAttributeValue("email", cty.StringVal(email))
		} else {
			ab.SetAttributeTraversal("email", traversal("var", emailVariable(acc)))
		}
		ab.SetAttributeTraversal("parent_id", traversal(ouType, acc.category.Slug(), "id"))
		ab.SetAttributeValue("close_on_deletion", cty.False)

		tags := map[string]cty.Value{
			"ManagedBy": cty.StringVal("lzdraw"),
			"OU":        cty.StringVal(acc.category.Name()),
		}
		if p := strings.TrimSpace(acc.acc.Purpose); p != "" {
			tags["Purpose"] = cty.StringVal(p)
		}
		ab.SetAttributeValue("tags", cty.MapVal(tags))
	}
	return f.Bytes()
}

func outputsTF(accounts []account) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.AppendNewBlock("output", []string{"organization_id"}).Body().
		SetAttributeTraversal("value", traversal(organizationType, organizationName, "id"))

	for _, c := range arch.Categories() {
		body.AppendNewline()
		body.AppendNewBlock("output", []string{c.Slug() + "_ou_id"}).Body().
			SetAttributeTraversal("value", traversal(ouType, c.Slug(), "id"))
	}

	if len(accounts) > 0 {
		attrs := make([]hclwrite.ObjectAttrTokens, len(accounts))
		for i, acc := range accounts {
			attrs[i] = hclwrite.ObjectAttrTokens{
				Name:  hclwrite.TokensForIdentifier(acc.resource),
				Value: hclwrite.TokensForTraversal(traversal(accountType, acc.resource, "id")),
			}
		}
		body.AppendNewline()
		body.AppendNewBlock("output", []string{"account_ids"}).Body().
			SetAttributeRaw("value", hclwrite.TokensForObject(attrs))
	}
	return f.Bytes()
}
