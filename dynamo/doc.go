// Package dynamo provides a DynamoDB-backed filesystem for small artifacts.
//
// Each file is stored as one item keyed by (dir, name), which makes a
// directory listing a single-partition Query. Content is limited by the
// DynamoDB item size cap, so this backend suits manifests, locks, and
// configuration, not bulk data.
package dynamo
