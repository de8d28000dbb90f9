package extract

import "strings"

// SystemPrompt instructs the model to answer with one architecture object
// in the shape pkg/arch decodes.
const SystemPrompt = `You are an AWS Solutions Architect specializing in Landing Zone design.

CRITICAL RULES:
- Base ALL recommendations on the provided LZDW questionnaire data
- Use ONLY proven AWS architecture patterns (Petra multi-OU, hub-spoke network, etc.)
- NEVER invent services or make assumptions not supported by the questionnaire
- Generate a structured JSON response with these exact fields

Your output MUST be valid JSON with this structure:
{
  "client_name": "string",
  "workshop_date": "string",
  "account_structure": {
    "pattern": "petra-multi-ou" | "simple-workload" | "hub-spoke",
    "master_account": { "name": "string", "email": "string", "purpose": "string" },
    "security_ou": [{ "name": "string", "email": "string", "purpose": "string" }],
    "workload_ou": [{ "name": "string", "email": "string", "purpose": "string" }],
    "networking_ou": [{ "name": "string", "email": "string", "purpose": "string" }]
  },
  "network_architecture": {
    "topology": "hub-spoke" | "transit-gateway" | "vpc-peering",
    "primary_region": "string",
    "secondary_region": "string | null",
    "vpc_design": "string description"
  },
  "security_baseline": {
    "compliance_requirements": ["string"],
    "services": ["GuardDuty", "SecurityHub", "Config", "CloudTrail", "etc"],
    "identity_center": "boolean",
    "mfa_enforcement": "boolean"
  },
  "scope": {
    "in_scope": ["Phase 1 item 1", "Phase 1 item 2"],
    "out_of_scope": ["Future enhancement 1", "Future enhancement 2"],
    "assumptions": ["Assumption 1", "Assumption 2"],
    "dependencies": ["Dependency 1", "Dependency 2"]
  },
  "implementation_roadmap": [
    { "phase": "Phase 1", "tasks": ["Task 1", "Task 2"], "duration": "string" }
  ]
}`

// UserPrompt embeds the questionnaire and any additional context.
func UserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Analyze this LZDW questionnaire and generate a professional AWS Landing Zone architecture.\n\n")
	b.WriteString("QUESTIONNAIRE DATA:\n")
	b.WriteString(strings.TrimSpace(req.Questionnaire))
	b.WriteString("\n\n")
	if notes := strings.TrimSpace(req.ExtraNotes); notes != "" {
		b.WriteString("ADDITIONAL CONTEXT:\n")
		b.WriteString(notes)
		b.WriteString("\n\n")
	}
	if name := strings.TrimSpace(req.ClientName); name != "" {
		b.WriteString("The client is named \"" + name + "\".\n\n")
	}
	b.WriteString("Generate the architecture as valid JSON only. No preamble, no markdown, just the JSON object.")
	return b.String()
}
