package arch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lzdw/lzdraw/pkg/errors"
)

const acmeJSON = `{
  "client_name": "Acme",
  "workshop_date": "2025-01-15",
  "account_structure": {
    "pattern": "petra-multi-ou",
    "master_account": {"name": "Acme Root", "email": "root@acme.example"},
    "security_ou": [
      {"name": "Log Archive", "email": "log@acme.example", "purpose": "Central logs"},
      {"name": "Audit", "email": "audit@acme.example"}
    ],
    "workload_ou": [{"name": "Prod"}],
    "networking_ou": []
  },
  "security_baseline": {"identity_center": "true", "mfa_enforcement": false, "services": ["GuardDuty"]}
}`

func TestDecode(t *testing.T) {
	a, err := Decode([]byte(acmeJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if a.ClientName != "Acme" {
		t.Errorf("ClientName = %q, want %q", a.ClientName, "Acme")
	}
	want := &AccountStructure{
		Pattern:       "petra-multi-ou",
		MasterAccount: &Account{Name: "Acme Root", Email: "root@acme.example"},
		SecurityOU: []Account{
			{Name: "Log Archive", Email: "log@acme.example", Purpose: "Central logs"},
			{Name: "Audit", Email: "audit@acme.example"},
		},
		WorkloadOU:   []Account{{Name: "Prod"}},
		NetworkingOU: []Account{},
	}
	if diff := cmp.Diff(want, a.AccountStructure); diff != "" {
		t.Errorf("AccountStructure mismatch (-want +got):\n%s", diff)
	}
	if !a.SecurityBaseline.IdentityCenter {
		t.Error("IdentityCenter = false, want true from quoted string")
	}
	if a.SecurityBaseline.MFAEnforcement {
		t.Error("MFAEnforcement = true, want false")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"not json", "{client_name:"},
		{"no account structure", `{"client_name": "Acme"}`},
		{"wrong type", `{"account_structure": {"security_ou": "none"}}`},
		{"bad boolean", `{"account_structure": {}, "security_baseline": {"identity_center": 3}}`},
		{"null structure", `{"account_structure": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("Decode() error = nil, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Decode() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestDecodeMissingStructureNamesField(t *testing.T) {
	_, err := Decode([]byte(`{"client_name": "Acme"}`))
	if got := errors.UserMessage(err); got != "account_structure is required" {
		t.Errorf("UserMessage() = %q, want %q", got, "account_structure is required")
	}
}

func TestDecodeLegacy(t *testing.T) {
	tests := []struct {
		name string
		data string
		want *AccountStructure
	}{
		{
			name: "master_payer with organizational_units",
			data: `{
				"client_name": "Old",
				"master_payer": {"name": "Payer", "email": "payer@old.example"},
				"organizational_units": [
					{"name": "Security OU", "accounts": [{"name": "Log"}]},
					{"name": "Workloads", "accounts": [{"name": "Dev"}, {"name": "Prod"}]},
					{"name": "Network OU", "accounts": [{"name": "Transit"}]}
				]
			}`,
			want: &AccountStructure{
				MasterAccount: &Account{Name: "Payer", Email: "payer@old.example"},
				SecurityOU:    []Account{{Name: "Log"}},
				WorkloadOU:    []Account{{Name: "Dev"}, {Name: "Prod"}},
				NetworkingOU:  []Account{{Name: "Transit"}},
			},
		},
		{
			name: "top-level ou arrays with master_email",
			data: `{
				"master_email": "root@flat.example",
				"security_ou": [{"name": "Audit"}],
				"workload_ou": []
			}`,
			want: &AccountStructure{
				MasterAccount: &Account{Email: "root@flat.example"},
				SecurityOU:    []Account{{Name: "Audit"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Decode([]byte(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, a.AccountStructure); diff != "" {
				t.Errorf("AccountStructure mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	data := []byte(`
client_name: Acme
account_structure:
  master_account:
    name: Acme Root
  security_ou:
    - name: Audit
  workload_ou: []
  networking_ou:
    - name: Hub
security_baseline:
  identity_center: "false"
`)
	a, err := DecodeYAML(data)
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}
	if got := len(a.AccountStructure.NetworkingOU); got != 1 {
		t.Errorf("len(NetworkingOU) = %d, want 1", got)
	}
	if a.SecurityBaseline.IdentityCenter {
		t.Error("IdentityCenter = true, want false")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "acme.json")
	yamlPath := filepath.Join(dir, "acme.yml")
	if err := os.WriteFile(jsonPath, []byte(acmeJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("client_name: Acme\naccount_structure: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		a, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", path, err)
		}
		if a.ClientName != "Acme" {
			t.Errorf("Load(%s) ClientName = %q, want Acme", path, a.ClientName)
		}
	}

	_, err := Load(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) code = %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestDefaults(t *testing.T) {
	var nilArch *Architecture
	if got := nilArch.Client(); got != DefaultClientName {
		t.Errorf("nil Client() = %q, want %q", got, DefaultClientName)
	}

	a := &Architecture{ClientName: "   ", AccountStructure: &AccountStructure{}}
	if got := a.Client(); got != "Client" {
		t.Errorf("Client() = %q, want Client", got)
	}
	m := a.Management()
	if m.Name != "Master/Payer Account" || m.Email != "Client Master/Root Email" {
		t.Errorf("Management() = %+v, want defaults", m)
	}

	tests := []struct {
		c    Category
		i    int
		acc  Account
		want string
	}{
		{Security, 0, Account{}, "Security Account 1"},
		{Workload, 2, Account{Name: " "}, "Workload Account 3"},
		{Networking, 0, Account{}, "Networking Account 1"},
		{Networking, 4, Account{Name: "Hub"}, "Hub"},
	}
	for _, tt := range tests {
		if got := AccountName(tt.c, tt.i, tt.acc); got != tt.want {
			t.Errorf("AccountName(%v, %d) = %q, want %q", tt.c, tt.i, got, tt.want)
		}
	}
}

func TestCategory(t *testing.T) {
	if got := Security.Label("Acme"); got != "Acme Security OU" {
		t.Errorf("Label() = %q, want %q", got, "Acme Security OU")
	}
	if got := Networking.Key(); got != "networking_ou" {
		t.Errorf("Key() = %q, want networking_ou", got)
	}

	names := map[string]Category{
		"Security OU":       Security,
		"Log Archive":       Security,
		"Infrastructure":    Workload,
		"Networking":        Networking,
		"Shared Transit OU": Networking,
	}
	for name, want := range names {
		if got := CategoryFromName(name); got != want {
			t.Errorf("CategoryFromName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestMaxAccounts(t *testing.T) {
	s := &AccountStructure{
		SecurityOU:   make([]Account, 2),
		WorkloadOU:   make([]Account, 5),
		NetworkingOU: nil,
	}
	if got := s.MaxAccounts(); got != 5 {
		t.Errorf("MaxAccounts() = %d, want 5", got)
	}
}

func TestDigest(t *testing.T) {
	a, err := Decode([]byte(`{"client_name":"Acme","account_structure":{"workload_ou":[{"name":"Prod"}]}}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode([]byte(`{
		"account_structure": { "workload_ou": [ { "name": "Prod" } ] },
		"client_name": "Acme"
	}`))
	if err != nil {
		t.Fatal(err)
	}

	da, err := a.Digest()
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	db, _ := b.Digest()
	if da != db {
		t.Errorf("Digest() differs for equivalent documents: %s vs %s", da, db)
	}
	if len(da) != 64 {
		t.Errorf("len(Digest()) = %d, want 64", len(da))
	}

	b.ClientName = "Other"
	if dc, _ := b.Digest(); dc == da {
		t.Error("Digest() unchanged after edit")
	}
}
