package domain

// KeyPrefix is the default namespace for every key written to the store.
const KeyPrefix = "docfinder:"

// DefaultTenant is used when authentication is disabled and no tenant header is sent.
const DefaultTenant = "default"
