package terraform

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/errors"
)

func sample() *arch.Architecture {
	return &arch.Architecture{
		ClientName: "Acme",
		AccountStructure: &arch.AccountStructure{
			Pattern:       "petra-multi-ou",
			MasterAccount: &arch.Account{Name: "Acme Root", Email: "root@acme.example"},
			SecurityOU: []arch.Account{
				{Name: "Log Archive", Email: "log@acme.example", Purpose: "Central logs"},
				{Name: "Audit"},
			},
			WorkloadOU: []arch.Account{{Name: "Prod", Email: "prod@acme.example"}, {Name: "Prod", Email: "prod2@acme.example"}},
		},
		NetworkArchitecture: &arch.NetworkArchitecture{PrimaryRegion: "eu-west-1"},
		SecurityBaseline: &arch.SecurityBaseline{
			IdentityCenter: true,
			Services:       []string{"GuardDuty", "Security Hub", "Unknown Thing"},
		},
	}
}

func parseHCL(t *testing.T, name string, src []byte) *hclwrite.File {
	t.Helper()
	f, diags := hclwrite.ParseConfig(src, name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		t.Fatalf("%s does not parse: %v\n%s", name, diags, src)
	}
	return f
}

func blocks(f *hclwrite.File, typ string) map[string]*hclwrite.Block {
	out := make(map[string]*hclwrite.Block)
	for _, b := range f.Body().Blocks() {
		if b.Type() == typ {
			out[strings.Join(b.Labels(), ".")] = b
		}
	}
	return out
}

func attr(b *hclwrite.Block, name string) string {
	a := b.Body().GetAttribute(name)
	if a == nil {
		return ""
	}
	return strings.TrimSpace(string(a.Expr().BuildTokens(nil).Bytes()))
}

func TestGenerateFiles(t *testing.T) {
	files, err := Generate(sample())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, name := range []string{VersionsFile, VariablesFile, MainFile, OutputsFile} {
		if _, ok := files[name]; !ok {
			t.Errorf("missing %s", name)
			continue
		}
		parseHCL(t, name, files[name])
	}
}

// references lists the root names of every traversal in body, recursively.
func references(body *hclsyntax.Body) map[string]bool {
	roots := make(map[string]bool)
	for _, a := range body.Attributes {
		for _, tr := range a.Expr.Variables() {
			roots[tr.RootName()] = true
		}
	}
	for _, b := range body.Blocks {
		for r := range references(b.Body) {
			roots[r] = true
		}
	}
	return roots
}

func TestGenerateValidHCL(t *testing.T) {
	tests := []struct {
		name string
		arch *arch.Architecture
	}{
		{"sample", sample()},
		{"empty structure", &arch.Architecture{AccountStructure: &arch.AccountStructure{}}},
		{"markup and interpolation in names", &arch.Architecture{
			ClientName: `Acme "Q" & <Co>`,
			AccountStructure: &arch.AccountStructure{
				MasterAccount: &arch.Account{Name: "Root ${var.x}"},
				SecurityOU:    []arch.Account{{Name: `Log "Archive"`, Purpose: "%{ if true }x%{ endif }"}},
				NetworkingOU:  []arch.Account{{Name: "Hub"}, {Name: "Hub"}, {Name: "hub"}},
			},
		}},
	}
	allowed := map[string]bool{"var": true, "string": true, organizationType: true, ouType: true, accountType: true}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Generate(tt.arch)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			for name, src := range files {
				f, diags := hclsyntax.ParseConfig(src, name, hcl.Pos{Line: 1, Column: 1})
				if diags.HasErrors() {
					t.Fatalf("%s has diagnostics: %v\n%s", name, diags, src)
				}
				for root := range references(f.Body.(*hclsyntax.Body)) {
					if !allowed[root] {
						t.Errorf("%s references unknown root %q", name, root)
					}
				}
			}
			if _, diags := hclsyntax.ParseConfig(Bundle(files), BundleFilename, hcl.Pos{Line: 1, Column: 1}); diags.HasErrors() {
				t.Errorf("bundle has diagnostics: %v", diags)
			}
		})
	}
}

func TestGenerateDuplicateNamesAndMissingEmails(t *testing.T) {
	a := &arch.Architecture{AccountStructure: &arch.AccountStructure{
		NetworkingOU: []arch.Account{{Name: "Hub"}, {Name: "Hub"}, {Name: "HUB!"}},
	}}
	files, err := Generate(a)
	if err != nil {
		t.Fatal(err)
	}
	res := blocks(parseHCL(t, MainFile, files[MainFile]), "resource")
	vars := blocks(parseHCL(t, VariablesFile, files[VariablesFile]), "variable")
	for _, r := range []string{"networking_hub", "networking_hub_2", "networking_hub_3"} {
		b, ok := res["aws_organizations_account."+r]
		if !ok {
			t.Errorf("account %s missing", r)
			continue
		}
		if got, want := attr(b, "email"), "var."+r+"_email"; got != want {
			t.Errorf("%s email = %s, want %s", r, got, want)
		}
		if _, ok := vars[r+"_email"]; !ok {
			t.Errorf("variable %s_email missing", r)
		}
	}
}

func TestGenerateMain(t *testing.T) {
	files, err := Generate(sample())
	if err != nil {
		t.Fatal(err)
	}
	f := parseHCL(t, MainFile, files[MainFile])
	res := blocks(f, "resource")

	org, ok := res["aws_organizations_organization.this"]
	if !ok {
		t.Fatal("organization resource missing")
	}
	principals := attr(org, "aws_service_access_principals")
	for _, want := range []string{"controltower.amazonaws.com", "sso.amazonaws.com", "guardduty.amazonaws.com", "securityhub.amazonaws.com"} {
		if !strings.Contains(principals, want) {
			t.Errorf("principals %s missing %s", principals, want)
		}
	}

	for _, slug := range []string{"security", "workload", "networking"} {
		ou, ok := res["aws_organizations_organizational_unit."+slug]
		if !ok {
			t.Errorf("OU %s missing", slug)
			continue
		}
		if got := attr(ou, "parent_id"); got != "aws_organizations_organization.this.roots[0].id" {
			t.Errorf("OU %s parent_id = %s", slug, got)
		}
	}

	tests := []struct {
		resource, email, parent string
	}{
		{"security_log_archive", `"log@acme.example"`, "aws_organizations_organizational_unit.security.id"},
		{"security_audit", "var.security_audit_email", "aws_organizations_organizational_unit.security.id"},
		{"workload_prod", `"prod@acme.example"`, "aws_organizations_organizational_unit.workload.id"},
		{"workload_prod_2", `"prod2@acme.example"`, "aws_organizations_organizational_unit.workload.id"},
	}
	for _, tt := range tests {
		b, ok := res["aws_organizations_account."+tt.resource]
		if !ok {
			t.Errorf("account %s missing", tt.resource)
			continue
		}
		if got := attr(b, "email"); got != tt.email {
			t.Errorf("%s email = %s, want %s", tt.resource, got, tt.email)
		}
		if got := attr(b, "parent_id"); got != tt.parent {
			t.Errorf("%s parent_id = %s, want %s", tt.resource, got, tt.parent)
		}
	}

	if !bytes.Contains(files[MainFile], []byte(`Purpose   = "Central logs"`)) && !bytes.Contains(files[MainFile], []byte(`Purpose = "Central logs"`)) {
		t.Errorf("purpose tag missing:\n%s", files[MainFile])
	}
}

func TestGenerateVariables(t *testing.T) {
	files, err := Generate(sample())
	if err != nil {
		t.Fatal(err)
	}
	f := parseHCL(t, VariablesFile, files[VariablesFile])
	vars := blocks(f, "variable")

	region, ok := vars["aws_region"]
	if !ok {
		t.Fatal("aws_region variable missing")
	}
	if got := attr(region, "default"); got != `"eu-west-1"` {
		t.Errorf("aws_region default = %s, want eu-west-1", got)
	}
	if _, ok := vars["security_audit_email"]; !ok {
		t.Error("email variable for account without email missing")
	}
	if _, ok := vars["security_log_archive_email"]; ok {
		t.Error("email variable emitted for account with email")
	}
}

func TestGenerateOutputs(t *testing.T) {
	files, err := Generate(sample())
	if err != nil {
		t.Fatal(err)
	}
	f := parseHCL(t, OutputsFile, files[OutputsFile])
	outs := blocks(f, "output")
	for _, name := range []string{"organization_id", "security_ou_id", "workload_ou_id", "networking_ou_id", "account_ids"} {
		if _, ok := outs[name]; !ok {
			t.Errorf("output %s missing", name)
		}
	}
	if got := attr(outs["account_ids"], "value"); !strings.Contains(got, "aws_organizations_account.workload_prod_2.id") {
		t.Errorf("account_ids = %s", got)
	}
}

func TestGenerateDefaults(t *testing.T) {
	files, err := Generate(&arch.Architecture{AccountStructure: &arch.AccountStructure{}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	f := parseHCL(t, VariablesFile, files[VariablesFile])
	if got := attr(blocks(f, "variable")["aws_region"], "default"); got != `"us-east-1"` {
		t.Errorf("default region = %s", got)
	}
	out := parseHCL(t, OutputsFile, files[OutputsFile])
	if _, ok := blocks(out, "output")["account_ids"]; ok {
		t.Error("account_ids output emitted without accounts")
	}
}

func TestGenerateInvalid(t *testing.T) {
	if _, err := Generate(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Generate(nil) error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestBundle(t *testing.T) {
	out := Bundle(map[string][]byte{
		"versions.tf": []byte("v\n"),
		"main.tf":     []byte("m\n"),
	})
	want := "# ---- main.tf ----\nm\n\n# ---- versions.tf ----\nv\n"
	if string(out) != want {
		t.Errorf("Bundle() = %q, want %q", out, want)
	}
}

func TestResourceName(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"security", "Log Archive", "security_log_archive"},
		{"workload", "Prod (EU) #1", "workload_prod_eu_1"},
		{"networking", "***", "networking"},
	}
	for _, tt := range tests {
		if got := resourceName(tt.prefix, tt.name); got != tt.want {
			t.Errorf("resourceName(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}
