package rulespec

// Schema is the CUE schema every imported rule document must satisfy.
// Validation happens via the CUE Go API (no CLI subprocess): the decoded
// YAML document is unified with #Document and checked for concreteness,
// with defaults filled in for the optional fields.
const Schema = `
#EntityType: "shipment" | "contract" | "quality_incident"

#Rule: {
	id:                string & !=""
	notification_type: string & !=""
	entity_type:       #EntityType
	priority:          int & >=0 | *100
	is_active:         bool | *true
	description:       string | *""
	conditions:        {...}
}

#Document: {
	rules: [...#Rule] & [_, ...]
}
`
