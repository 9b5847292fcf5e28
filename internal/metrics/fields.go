package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrProvider = "provider"
	AttrTask     = "task"
	AttrTier     = "tier"
	AttrCategory = "category"
	AttrResult   = "result"
)

// Cache tiers reported through RecordCacheLookup.
const (
	TierServer = "server"
	TierClient = "client"
)
