// Package memory provides bitreg.Memory implementations: a host byte slice
// and an adapter for wazero linear memory.
//
// Reads from a wazero memory return views into the guest memory that are
// only valid until the next write or grow; callers that keep the bytes
// must copy them. Slice.Read always returns a copy.
package memory
