// Package arch defines the Architecture Description: the structured account
// and organization layout produced by a Landing Zone Design Workshop.
//
// An [Architecture] is decoded once per request (see [Decode], [DecodeYAML]
// and [Load]), validated against an embedded JSON Schema, normalized from
// older response shapes, and then handed to the layout generator. Only
// [AccountStructure] drives the diagram; every other section is carried
// through untouched for the HTTP API and the Terraform encoder.
//
// # Defaults
//
// Missing display fields never fail a render. The accessor methods
// substitute fixed defaults instead:
//
//	a.Client()                 // "Client" when client_name is blank
//	a.Management()             // "Master/Payer Account" / "Client Master/Root Email"
//	arch.AccountName(arch.Security, 0, acc) // "Security Account 1" when acc.Name is blank
package arch

import (
	"fmt"
	"strings"
)

// Display defaults substituted for missing fields.
const (
	DefaultClientName      = "Client"
	DefaultManagementName  = "Master/Payer Account"
	DefaultManagementEmail = "Client Master/Root Email"
)

// Architecture is the root of an Architecture Description.
type Architecture struct {
	ClientName            string               `json:"client_name"`
	WorkshopDate          string               `json:"workshop_date,omitempty"`
	AccountStructure      *AccountStructure    `json:"account_structure,omitempty"`
	NetworkArchitecture   *NetworkArchitecture `json:"network_architecture,omitempty"`
	SecurityBaseline      *SecurityBaseline    `json:"security_baseline,omitempty"`
	Scope                 *Scope               `json:"scope,omitempty"`
	ImplementationRoadmap []Phase              `json:"implementation_roadmap,omitempty"`
}

// AccountStructure holds the management account and the three fixed
// organizational units.
type AccountStructure struct {
	Pattern       string    `json:"pattern,omitempty"`
	MasterAccount *Account  `json:"master_account,omitempty"`
	SecurityOU    []Account `json:"security_ou"`
	WorkloadOU    []Account `json:"workload_ou"`
	NetworkingOU  []Account `json:"networking_ou"`
}

// Account is a single member account.
type Account struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

type NetworkArchitecture struct {
	Topology        string `json:"topology,omitempty"`
	PrimaryRegion   string `json:"primary_region,omitempty"`
	SecondaryRegion string `json:"secondary_region,omitempty"`
	VPCDesign       string `json:"vpc_design,omitempty"`
}

type SecurityBaseline struct {
	ComplianceRequirements []string `json:"compliance_requirements,omitempty"`
	Services               []string `json:"services,omitempty"`
	IdentityCenter         Bool     `json:"identity_center"`
	MFAEnforcement         Bool     `json:"mfa_enforcement"`
}

type Scope struct {
	InScope      []string `json:"in_scope,omitempty"`
	OutOfScope   []string `json:"out_of_scope,omitempty"`
	Assumptions  []string `json:"assumptions,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Phase is one step of the implementation roadmap.
type Phase struct {
	Phase    string   `json:"phase"`
	Tasks    []string `json:"tasks,omitempty"`
	Duration string   `json:"duration,omitempty"`
}

// Category identifies one of the three fixed organizational units.
type Category int

const (
	Security Category = iota
	Workload
	Networking
)

// Categories returns every category in render order.
func Categories() []Category {
	return []Category{Security, Workload, Networking}
}

// Name returns the display name ("Security", "Workload", "Networking").
func (c Category) Name() string {
	switch c {
	case Security:
		return "Security"
	case Workload:
		return "Workload"
	case Networking:
		return "Networking"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Key returns the JSON field that holds the category's accounts.
func (c Category) Key() string {
	return strings.ToLower(c.Name()) + "_ou"
}

// Slug returns a short identifier safe for ids and resource names.
func (c Category) Slug() string {
	return strings.ToLower(c.Name())
}

// Label returns the OU display label for the given client.
func (c Category) Label(client string) string {
	return client + " " + c.Name() + " OU"
}

func (c Category) String() string { return c.Name() }

// CategoryFromName infers a category from a free-form OU name. Names that
// mention neither security nor networking fall into Workload.
func CategoryFromName(name string) Category {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "secur"), strings.Contains(n, "audit"), strings.Contains(n, "log archive"):
		return Security
	case strings.Contains(n, "network"), strings.Contains(n, "transit"):
		return Networking
	default:
		return Workload
	}
}

// OU returns the accounts of the given category.
func (s *AccountStructure) OU(c Category) []Account {
	if s == nil {
		return nil
	}
	switch c {
	case Security:
		return s.SecurityOU
	case Workload:
		return s.WorkloadOU
	case Networking:
		return s.NetworkingOU
	}
	return nil
}

func (s *AccountStructure) appendOU(c Category, accs ...Account) {
	switch c {
	case Security:
		s.SecurityOU = append(s.SecurityOU, accs...)
	case Workload:
		s.WorkloadOU = append(s.WorkloadOU, accs...)
	case Networking:
		s.NetworkingOU = append(s.NetworkingOU, accs...)
	}
}

// MaxAccounts returns the size of the largest OU.
func (s *AccountStructure) MaxAccounts() int {
	n := 0
	for _, c := range Categories() {
		n = max(n, len(s.OU(c)))
	}
	return n
}

// Client returns the client name, or DefaultClientName when blank.
func (a *Architecture) Client() string {
	if a == nil {
		return DefaultClientName
	}
	if name := strings.TrimSpace(a.ClientName); name != "" {
		return name
	}
	return DefaultClientName
}

// Management returns the management account with defaults applied.
func (a *Architecture) Management() Account {
	var m Account
	if a != nil && a.AccountStructure != nil && a.AccountStructure.MasterAccount != nil {
		m = *a.AccountStructure.MasterAccount
	}
	if strings.TrimSpace(m.Name) == "" {
		m.Name = DefaultManagementName
	}
	if strings.TrimSpace(m.Email) == "" {
		m.Email = DefaultManagementEmail
	}
	return m
}

// AccountName returns acc.Name, or "<Category> Account <i+1>" when blank.
func AccountName(c Category, i int, acc Account) string {
	if name := strings.TrimSpace(acc.Name); name != "" {
		return acc.Name
	}
	return fmt.Sprintf("%s Account %d", c.Name(), i+1)
}
